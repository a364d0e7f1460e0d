package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongoDB connects to the run-history store (internal/store) and
// ensures its indexes exist.
func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	if err := createIndexes(client, cfg.DBName); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// audit_runs: one document per CLI/server run, for history lookups
	// and the scheduler's "last run" queries.
	runsCollection := db.Collection("audit_runs")
	runIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "startUrl", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "scheduleId", Value: 1}}},
	}
	if _, err := runsCollection.Indexes().CreateMany(context.Background(), runIndexes); err != nil {
		return err
	}

	// schedules: recurring audit definitions driven by internal/schedule.
	schedulesCollection := db.Collection("schedules")
	scheduleIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := schedulesCollection.Indexes().CreateMany(context.Background(), scheduleIndexes); err != nil {
		return err
	}

	return nil
}
