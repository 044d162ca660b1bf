package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"registration-service/internal/model"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	EnsureIndexes(ctx context.Context) error
}

type mongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(collection *mongo.Collection) ProfileRepository {
	return &mongoProfileRepository{collection: collection}
}

func (r *mongoProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return &StoreError{Op: "insert profile", Err: err}
	}

	return nil
}

// EnsureIndexes creates the lookup index on user_id. It is not unique: the
// collection carries no integrity rules of its own.
func (r *mongoProfileRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetName("user_id_1"),
	})
	if err != nil {
		return &StoreError{Op: "create profile indexes", Err: err}
	}

	return nil
}
