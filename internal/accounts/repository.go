package accounts

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	Create(ctx context.Context, account Account) error
	FindByUsername(ctx context.Context, username string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, account Account) error {
	_, err := r.col.InsertOne(ctx, account)
	return err
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (Account, error) {
	var account Account
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&account)
	return account, err
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Account, error) {
	var account Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	return account, err
}
