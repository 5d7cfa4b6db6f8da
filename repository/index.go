package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersCollection := db.Collection("users")
	tagsCollection := db.Collection("tags")
	entriesCollection := db.Collection("entries")
	sessionsCollection := db.Collection("sessions")

	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("unique_email").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("user_id_index").
				SetUnique(true),
		},
	}

	tagIndexes := []mongo.IndexModel{
		// One tag name per user
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().
				SetName("unique_user_tag_name").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("user_tags_created"),
		},
	}

	entryIndexes := []mongo.IndexModel{
		// Cursor pagination walks (timestamp, _id) and (created_at, _id)
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "timestamp", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().
				SetName("user_entries_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			},
			Options: options.Index().
				SetName("user_entries_created"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "tags.tag_id", Value: 1},
			},
			Options: options.Index().
				SetName("user_entry_tags"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "hashtags", Value: 1},
			},
			Options: options.Index().
				SetName("user_entry_hashtags"),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_archived", Value: 1},
				{Key: "updated_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_archived_entries"),
		},
	}

	sessionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("session_id_index").
				SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_active", Value: 1},
				{Key: "last_activity_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_active_sessions"),
		},
		// Mongo drops sessions once they expire
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetName("session_ttl").
				SetExpireAfterSeconds(0),
		},
	}

	if _, err := usersCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	if _, err := tagsCollection.Indexes().CreateMany(ctx, tagIndexes); err != nil {
		return fmt.Errorf("failed to create tag indexes: %w", err)
	}
	if _, err := entriesCollection.Indexes().CreateMany(ctx, entryIndexes); err != nil {
		return fmt.Errorf("failed to create entry indexes: %w", err)
	}
	if _, err := sessionsCollection.Indexes().CreateMany(ctx, sessionIndexes); err != nil {
		return fmt.Errorf("failed to create session indexes: %w", err)
	}

	log.Println("Successfully created all indexes")
	return nil
}
