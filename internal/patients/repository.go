package patients

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, patient Patient) error
	Update(ctx context.Context, id string, set bson.M) (Patient, error)
	FindByID(ctx context.Context, id string) (Patient, error)
	FindByUser(ctx context.Context, userID string) (Patient, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, patient Patient) error {
	_, err := r.col.InsertOne(ctx, patient)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Patient, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Patient
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Patient{}, err
	}
	return updated, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Patient, error) {
	var patient Patient
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&patient)
	return patient, err
}

func (r *MongoRepository) FindByUser(ctx context.Context, userID string) (Patient, error) {
	var patient Patient
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&patient)
	return patient, err
}
