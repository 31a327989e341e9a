package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"youthgroup_backend/internals/configs"
)

// =======================
// MONGODB CONNECTOR
// =======================
// ConnectMongo returns the flexible-attribute database handle, or (nil, nil)
// when MONGODB_URI is unset. Mongo being down is never fatal for the app —
// the stores that use it degrade per request instead.
func ConnectMongo(cfg *configs.AppConfig) (*mongo.Database, error) {
	if cfg.MongoURI == "" {
		log.Println("⚠️ MongoDB disabled (no MONGODB_URI). Custom fields will be unavailable.")
		return nil, nil
	}

	log.Println("🔌 Connecting to MongoDB...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(5*time.Second).
		SetConnectTimeout(5*time.Second).
		SetRetryWrites(true))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	log.Println("✅ MongoDB connected.")
	return client.Database(cfg.MongoName), nil
}

func CloseMongo(db *mongo.Database) {
	if db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(ctx); err != nil {
		log.Printf("mongo disconnect err: %v", err)
	}
}
