package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/sheisgracious/mindwell/internal/auth"
	"github.com/sheisgracious/mindwell/internal/config"
	"github.com/sheisgracious/mindwell/internal/db"
	"github.com/sheisgracious/mindwell/internal/plantypes"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedPlanType struct {
	Name        string
	Description string
	BaseCost    int64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	// Base costs are cents.
	planTypes := []seedPlanType{
		{Name: "Cognitive Behavioral Therapy", Description: "Structured short-term therapy focused on thought and behavior patterns.", BaseCost: 12000},
		{Name: "Family Therapy", Description: "Sessions involving family members to improve communication and resolve conflict.", BaseCost: 15000},
		{Name: "Couples Counseling", Description: "Joint sessions for partners working through relationship challenges.", BaseCost: 14000},
		{Name: "Trauma Counseling", Description: "Specialized support for processing traumatic experiences.", BaseCost: 13500},
		{Name: "Grief Counseling", Description: "Support through loss and bereavement.", BaseCost: 11000},
		{Name: "Teen Counseling", Description: "Age-appropriate support for adolescents.", BaseCost: 10500},
	}

	for _, pt := range planTypes {
		slug := plantypes.Slugify(pt.Name)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":          primitive.NewObjectID().Hex(),
				"name":         pt.Name,
				"slug":         slug,
				"description":  pt.Description,
				"base_cost":    pt.BaseCost,
				"is_active":    true,
				"provider_ids": []string{},
				"created_at":   time.Now().In(cfg.Timezone),
			},
		}
		if _, err := cols.PlanTypes.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed error for %s: %v", pt.Name, err)
		}
	}

	if password := os.Getenv("DEMO_PROVIDER_PASSWORD"); password != "" {
		if err := seedDemoProvider(ctx, cols, password, cfg.Timezone); err != nil {
			log.Fatalf("seed demo provider: %v", err)
		}
	} else {
		log.Println("seed demo provider: DEMO_PROVIDER_PASSWORD missing, skipping")
	}

	log.Println("seed completed")
}

// seedDemoProvider creates one account, provider profile and weekday schedule
// so fresh environments have something bookable. Re-running is a no-op.
func seedDemoProvider(ctx context.Context, cols *db.Collections, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	accountID := primitive.NewObjectID().Hex()
	_, err = cols.Users.UpdateOne(ctx,
		bson.M{"username": "demo-provider"},
		bson.M{"$setOnInsert": bson.M{
			"_id":           accountID,
			"username":      "demo-provider",
			"email":         "demo-provider@example.com",
			"password_hash": hash,
			"created_at":    time.Now().In(loc),
			"updated_at":    time.Now().In(loc),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	var account struct {
		ID string `bson:"_id"`
	}
	if err := cols.Users.FindOne(ctx, bson.M{"username": "demo-provider"}).Decode(&account); err != nil {
		return err
	}

	providerID := primitive.NewObjectID().Hex()
	_, err = cols.Providers.UpdateOne(ctx,
		bson.M{"user_id": account.ID},
		bson.M{"$setOnInsert": bson.M{
			"_id":              providerID,
			"user_id":          account.ID,
			"first_name":       "Dana",
			"last_name":        "Whitfield",
			"specialization":   "Cognitive Behavioral Therapy",
			"experience_years": 8,
			"languages":        "English, Spanish",
			"bio":              "Licensed therapist focused on CBT for anxiety and depression.",
			"verified":         true,
			"join_date":        time.Now().In(loc),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	var provider struct {
		ID string `bson:"_id"`
	}
	if err := cols.Providers.FindOne(ctx, bson.M{"user_id": account.ID}).Decode(&provider); err != nil {
		return err
	}

	for _, day := range []string{"monday", "tuesday", "wednesday", "thursday", "friday"} {
		_, err := cols.Availabilities.UpdateOne(ctx,
			bson.M{"provider_id": provider.ID, "day_of_week": day, "start_time": "09:00"},
			bson.M{"$setOnInsert": bson.M{
				"_id":          primitive.NewObjectID().Hex(),
				"provider_id":  provider.ID,
				"day_of_week":  day,
				"start_time":   "09:00",
				"end_time":     "17:00",
				"is_available": true,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}
	}
	return nil
}
