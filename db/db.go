package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database

// GetCollection returns a collection by name
func GetCollection(collectionName string) *mongo.Collection {
	return MongoDatabase.Collection(collectionName)
}

// extractDBName parses the database name from the URI, defaulting to "learnhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "learnhub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "learnhub"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	return nil
}

// EnsureIndexes creates the indexes the application relies on. The unique
// index on xp_events is what makes XP awards idempotent under concurrency,
// so boot fails hard if it cannot be created.
func EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"admins": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"xp_events": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "action", Value: 1}, {Key: "referenceId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"gamification_stats": {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "totalXp", Value: -1}}},
		},
		"earned_badges": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "badgeName", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"enrollments": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"cart_items": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"blog_likes": {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "blogId", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		"webhook_events": {
			{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"orders": {
			{Keys: bson.D{{Key: "gatewayOrderId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		"courses": {
			{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "category", Value: "text"}}},
		},
	}

	for name, models := range indexes {
		if _, err := MongoDatabase.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
