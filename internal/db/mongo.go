package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Users          *mongo.Collection
	Providers      *mongo.Collection
	Patients       *mongo.Collection
	Availabilities *mongo.Collection
	PlanTypes      *mongo.Collection
	TherapyPlans   *mongo.Collection
	Sessions       *mongo.Collection
	Messages       *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Users:          db.Collection("users"),
		Providers:      db.Collection("providers"),
		Patients:       db.Collection("patients"),
		Availabilities: db.Collection("availabilities"),
		PlanTypes:      db.Collection("plan_types"),
		TherapyPlans:   db.Collection("therapy_plans"),
		Sessions:       db.Collection("sessions"),
		Messages:       db.Collection("messages"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := cols.Users.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	// One profile per role per account.
	_, err = cols.Providers.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "specialization", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Patients.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Availabilities.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "day_of_week", Value: 1}, {Key: "start_time", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.PlanTypes.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.TherapyPlans.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "plan_type_id", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	// The partial unique index is the storage-level backstop against two
	// scheduled sessions landing on the same exact provider/date/time. The
	// overlap rule for unequal start times is enforced by the booking lock.
	_, err = cols.Sessions.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "session_date", Value: 1}, {Key: "session_time", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "scheduled"}),
		},
		{
			Keys: bson.D{{Key: "plan_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "patient_id", Value: 1}, {Key: "session_date", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Messages.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "plan_id", Value: 1}, {Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "is_read", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	return nil
}
