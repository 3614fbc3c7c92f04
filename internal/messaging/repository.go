package messaging

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Insert(ctx context.Context, message *Message) error
	ListByPlan(ctx context.Context, planID string) ([]Message, error)
	ListByUser(ctx context.Context, accountID string) ([]Message, error)
	CountUnread(ctx context.Context, accountID string) (int64, error)
	MarkAllRead(ctx context.Context, planID, recipientID string) (int64, error)
	MarkAllReadForUser(ctx context.Context, recipientID string) (int64, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, message *Message) error {
	if message.ID == "" {
		message.ID = primitive.NewObjectID().Hex()
	}
	message.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, message)
	return err
}

// ListByPlan returns a plan's messages oldest first, the order a
// conversation reads in.
func (r *MongoRepository) ListByPlan(ctx context.Context, planID string) ([]Message, error) {
	return r.list(ctx,
		bson.M{"plan_id": planID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
}

// ListByUser returns every message the account sent or received, newest
// first. The thread fold depends on this ordering.
func (r *MongoRepository) ListByUser(ctx context.Context, accountID string) ([]Message, error) {
	return r.list(ctx,
		bson.M{"$or": []bson.M{
			{"sender_id": accountID},
			{"recipient_id": accountID},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
}

func (r *MongoRepository) CountUnread(ctx context.Context, accountID string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"recipient_id": accountID, "is_read": false})
}

func (r *MongoRepository) MarkAllRead(ctx context.Context, planID, recipientID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"plan_id": planID, "recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkAllReadForUser clears the account's unread messages across every plan.
func (r *MongoRepository) MarkAllReadForUser(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Message, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	messages := []Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
