package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	dataCollection     = "resume_data"
	metadataCollection = "resume_metadata"
	connectTimeout     = 10 * time.Second
)

// MongoRepository reads resume documents from MongoDB.
type MongoRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and selects database. The caller closes the repository.
func Connect(ctx context.Context, uri, database string) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("portfolio-gate"))
	if err != nil {
		return nil, fmt.Errorf("resume: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("resume: ping: %w", err)
	}
	return NewMongoRepository(client, database), nil
}

// NewMongoRepository wraps an existing client.
func NewMongoRepository(client *mongo.Client, database string) *MongoRepository {
	return &MongoRepository{client: client, db: client.Database(database)}
}

func (r *MongoRepository) All(ctx context.Context) ([]bson.M, error) {
	return r.find(ctx, bson.D{})
}

func (r *MongoRepository) ByCategory(ctx context.Context, category string) ([]bson.M, error) {
	return r.find(ctx, bson.D{{Key: "category", Value: category}})
}

func (r *MongoRepository) find(ctx context.Context, filter bson.D) ([]bson.M, error) {
	cur, err := r.db.Collection(dataCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("resume: find: %w", err)
	}
	docs := []bson.M{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("resume: decode: %w", err)
	}
	return docs, nil
}

func (r *MongoRepository) Metadata(ctx context.Context) (bson.M, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 0}})
	var doc bson.M
	err := r.db.Collection(metadataCollection).FindOne(ctx, bson.D{}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resume: metadata: %w", err)
	}
	return doc, nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *MongoRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
