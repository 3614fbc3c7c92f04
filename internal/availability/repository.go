package availability

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Availability) error
	FindByID(ctx context.Context, id string) (Availability, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListForDay(ctx context.Context, providerID, day string) ([]Availability, error)
	ListByProvider(ctx context.Context, providerID string) ([]Availability, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, item Availability) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Availability, error) {
	var item Availability
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, err
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListForDay returns only is_available windows, ordered by start time.
func (r *MongoRepository) ListForDay(ctx context.Context, providerID, day string) ([]Availability, error) {
	query := bson.M{
		"provider_id":  providerID,
		"day_of_week":  day,
		"is_available": true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.list(ctx, query, opts)
}

// ListByProvider returns every window the provider has defined, closed ones
// included, ordered by start time. Weekday ordering is done by the service
// because day names do not sort lexicographically.
func (r *MongoRepository) ListByProvider(ctx context.Context, providerID string) ([]Availability, error) {
	query := bson.M{"provider_id": providerID}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.list(ctx, query, opts)
}

func (r *MongoRepository) list(ctx context.Context, query bson.M, opts *options.FindOptions) ([]Availability, error) {
	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Availability, 0)
	for cursor.Next(ctx) {
		var item Availability
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
