package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/utils"
)

var ErrTagNotFound = errors.New("tag not found")

type TagsRepo struct {
	MongoCollection *mongo.Collection
}

func GetTagsRepo(client *mongo.Client) *TagsRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := utils.GetEnvAsString("TAGS_COLLECTION", "tags")
	return &TagsRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

func (r *TagsRepo) CreateTag(ctx context.Context, tag *model.Tag) error {
	timer := utils.TrackDBOperation("insert", "tags")
	defer timer.ObserveDuration()

	if tag.UserID == "" {
		utils.TrackError("database", "invalid_tag_data")
		return errors.New("user ID is required")
	}

	tag.CreatedAt = time.Now()

	if _, err := r.MongoCollection.InsertOne(ctx, tag); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("tag name %q already exists", tag.Name)
		}
		utils.TrackError("database", "tag_creation_failed")
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetUserTags returns all tags for a user in creation order.
func (r *TagsRepo) GetUserTags(ctx context.Context, userID string) ([]*model.Tag, error) {
	timer := utils.TrackDBOperation("find", "tags")
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		utils.TrackError("database", "tag_list_failed")
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []*model.Tag{}
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagsRepo) GetTag(ctx context.Context, tagID, userID string) (*model.Tag, error) {
	timer := utils.TrackDBOperation("find", "tags")
	defer timer.ObserveDuration()

	var tag model.Tag
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": tagID, "user_id": userID}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

// FindTagByName is used for the per-user name uniqueness check.
func (r *TagsRepo) FindTagByName(ctx context.Context, userID, name string) (*model.Tag, error) {
	timer := utils.TrackDBOperation("find", "tags")
	defer timer.ObserveDuration()

	var tag model.Tag
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID, "name": name}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// FindTagsByIDs resolves a set of tag ids to tags owned by the user.
func (r *TagsRepo) FindTagsByIDs(ctx context.Context, userID string, tagIDs []string) ([]*model.Tag, error) {
	timer := utils.TrackDBOperation("find", "tags")
	defer timer.ObserveDuration()

	if len(tagIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.MongoCollection.Find(ctx, bson.M{
		"_id":     bson.M{"$in": tagIDs},
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tags []*model.Tag
	if err := cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagsRepo) UpdateTag(ctx context.Context, tagID, userID string, updates *model.Tag) error {
	timer := utils.TrackDBOperation("update", "tags")
	defer timer.ObserveDuration()

	now := time.Now()
	updates.UpdatedAt = &now

	update := bson.M{
		"$set": bson.M{
			"name":       updates.Name,
			"type":       updates.Type,
			"categories": updates.Categories,
			"value_type": updates.ValueType,
			"options":    updates.Options,
			"properties": updates.Properties,
			"updated_at": updates.UpdatedAt,
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": tagID, "user_id": userID}, update)
	if err != nil {
		utils.TrackError("database", "tag_update_failed")
		return fmt.Errorf("failed to update tag: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *TagsRepo) DeleteTag(ctx context.Context, tagID, userID string) error {
	timer := utils.TrackDBOperation("delete", "tags")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": tagID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "tag_deletion_failed")
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (r *TagsRepo) CountUserTags(ctx context.Context, userID string) (int, error) {
	timer := utils.TrackDBOperation("count", "tags")
	defer timer.ObserveDuration()

	count, err := r.MongoCollection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *TagsRepo) DeleteUserTags(ctx context.Context, userID string) error {
	timer := utils.TrackDBOperation("delete", "tags")
	defer timer.ObserveDuration()

	_, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
