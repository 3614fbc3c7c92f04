package providers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, provider Provider) error
	Update(ctx context.Context, id string, set bson.M) (Provider, error)
	FindByID(ctx context.Context, id string) (Provider, error)
	FindByUser(ctx context.Context, userID string) (Provider, error)
	List(ctx context.Context, filter ListFilter) ([]Provider, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, provider Provider) error {
	_, err := r.col.InsertOne(ctx, provider)
	return err
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Provider, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Provider
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Provider{}, err
	}
	return updated, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Provider, error) {
	var provider Provider
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&provider)
	return provider, err
}

func (r *MongoRepository) FindByUser(ctx context.Context, userID string) (Provider, error) {
	var provider Provider
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&provider)
	return provider, err
}

func (r *MongoRepository) List(ctx context.Context, filter ListFilter) ([]Provider, error) {
	query := bson.M{"verified": true}
	if filter.Specialization != "" {
		query["specialization"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Specialization, Options: "i"}}
	}
	if filter.Language != "" {
		query["languages"] = bson.M{"$regex": primitive.Regex{Pattern: filter.Language, Options: "i"}}
	}
	if filter.Search != "" {
		regex := bson.M{"$regex": primitive.Regex{Pattern: filter.Search, Options: "i"}}
		query["$or"] = bson.A{
			bson.M{"first_name": regex},
			bson.M{"last_name": regex},
			bson.M{"specialization": regex},
			bson.M{"bio": regex},
		}
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "last_name", Value: 1},
		{Key: "first_name", Value: 1},
	})

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Provider, 0)
	for cursor.Next(ctx) {
		var p Provider
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
