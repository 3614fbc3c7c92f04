package plans

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, plan *TherapyPlan) error
	FindByID(ctx context.Context, id string) (*TherapyPlan, error)
	ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]TherapyPlan, error)
	ListByProvider(ctx context.Context, providerID string, filter ListFilter) ([]TherapyPlan, error)
	UpdateStatus(ctx context.Context, id, status string) error
	CountByPlanType(ctx context.Context, planTypeID string) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, plan *TherapyPlan) error {
	if plan.ID == "" {
		plan.ID = primitive.NewObjectID().Hex()
	}
	plan.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, plan)
	return err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*TherapyPlan, error) {
	var plan TherapyPlan
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M) ([]TherapyPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	plans := []TherapyPlan{}
	if err := cur.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *MongoRepository) ListByPatient(ctx context.Context, patientID string, filter ListFilter) ([]TherapyPlan, error) {
	q := bson.M{"patient_id": patientID}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return r.list(ctx, q)
}

func (r *MongoRepository) ListByProvider(ctx context.Context, providerID string, filter ListFilter) ([]TherapyPlan, error) {
	q := bson.M{"provider_id": providerID}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return r.list(ctx, q)
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) CountByPlanType(ctx context.Context, planTypeID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"plan_type_id": planTypeID})
}
