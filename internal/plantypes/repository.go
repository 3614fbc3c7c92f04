package plantypes

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item PlanType) error
	Update(ctx context.Context, id string, set bson.M) (PlanType, error)
	Delete(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (PlanType, error)
	FindBySlug(ctx context.Context, slug string) (PlanType, error)
	ListActive(ctx context.Context) ([]PlanType, error)
	ListForProvider(ctx context.Context, providerID string) ([]PlanType, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item PlanType) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (PlanType, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated PlanType
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return PlanType{}, err
	}
	return updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (PlanType, error) {
	var item PlanType
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, err
}

func (r *MongoRepository) FindBySlug(ctx context.Context, slug string) (PlanType, error) {
	var item PlanType
	err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&item)
	return item, err
}

func (r *MongoRepository) ListActive(ctx context.Context) ([]PlanType, error) {
	return r.list(ctx, bson.M{"is_active": true})
}

func (r *MongoRepository) ListForProvider(ctx context.Context, providerID string) ([]PlanType, error) {
	return r.list(ctx, bson.M{"is_active": true, "provider_ids": providerID})
}

func (r *MongoRepository) list(ctx context.Context, query bson.M) ([]PlanType, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]PlanType, 0)
	for cursor.Next(ctx) {
		var item PlanType
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
