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

var ErrEntryNotFound = errors.New("entry not found")

type EntriesRepo struct {
	MongoCollection *mongo.Collection
}

func GetEntriesRepo(client *mongo.Client) *EntriesRepo {
	dbName := os.Getenv("MONGO_DB")
	collectionName := utils.GetEnvAsString("ENTRIES_COLLECTION", "entries")
	return &EntriesRepo{
		MongoCollection: client.Database(dbName).Collection(collectionName),
	}
}

// EntryCursor marks the position after the last entry of a page.
// AfterID breaks ties between entries sharing the same sort value, so
// the (sort value, id) pair is a total order and pages never skip or
// duplicate an entry.
type EntryCursor struct {
	After   time.Time
	AfterID string
}

// EntrySearchOptions selects and orders a page of entries.
type EntrySearchOptions struct {
	UserID          string
	TagIDs          []string
	Hashtags        []string
	SortBy          string // "timestamp" or "created_at"
	SortOrder       string // "asc" or "desc"
	Limit           int
	Cursor          *EntryCursor
	IncludeArchived bool
}

func sortField(sortBy string) string {
	switch sortBy {
	case "created_at", "createdAt":
		return "created_at"
	default:
		return "timestamp"
	}
}

// FindEntries returns one page plus the cursor for the next one.
// hasMore is computed by over-fetching a single document.
func (r *EntriesRepo) FindEntries(ctx context.Context, opts EntrySearchOptions) ([]*model.Entry, bool, *EntryCursor, error) {
	timer := utils.TrackDBOperation("find", "entries")
	defer timer.ObserveDuration()

	if opts.UserID == "" {
		return nil, false, nil, errors.New("user ID is required")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 30
	}
	if limit > 100 {
		limit = 100
	}

	field := sortField(opts.SortBy)
	direction := -1
	if opts.SortOrder == "asc" {
		direction = 1
	}

	filter := bson.M{"user_id": opts.UserID}
	if !opts.IncludeArchived {
		filter["is_archived"] = false
	}
	if len(opts.TagIDs) > 0 {
		filter["tags.tag_id"] = bson.M{"$in": opts.TagIDs}
	}
	if len(opts.Hashtags) > 0 {
		filter["hashtags"] = bson.M{"$all": opts.Hashtags}
	}

	if opts.Cursor != nil {
		op := "$lt"
		if direction == 1 {
			op = "$gt"
		}
		filter["$or"] = []bson.M{
			{field: bson.M{op: opts.Cursor.After}},
			{field: opts.Cursor.After, "_id": bson.M{op: opts.Cursor.AfterID}},
		}
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}}).
		SetLimit(int64(limit + 1))

	cursor, err := r.MongoCollection.Find(ctx, filter, findOpts)
	if err != nil {
		utils.TrackError("database", "entry_list_failed")
		return nil, false, nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*model.Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, false, nil, err
	}

	hasMore := len(entries) > limit
	if hasMore {
		entries = entries[:limit]
	}

	var next *EntryCursor
	if hasMore && len(entries) > 0 {
		last := entries[len(entries)-1]
		after := last.Timestamp
		if field == "created_at" {
			after = last.CreatedAt
		}
		next = &EntryCursor{After: after, AfterID: last.ID}
	}

	return entries, hasMore, next, nil
}

func (r *EntriesRepo) CreateEntry(ctx context.Context, entry *model.Entry) error {
	timer := utils.TrackDBOperation("insert", "entries")
	defer timer.ObserveDuration()

	if entry.UserID == "" {
		utils.TrackError("database", "invalid_entry_data")
		return errors.New("user ID is required")
	}

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if _, err := r.MongoCollection.InsertOne(ctx, entry); err != nil {
		utils.TrackError("database", "entry_creation_failed")
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

func (r *EntriesRepo) GetEntry(ctx context.Context, entryID, userID string) (*model.Entry, error) {
	timer := utils.TrackDBOperation("find", "entries")
	defer timer.ObserveDuration()

	var entry model.Entry
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": entryID, "user_id": userID}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *EntriesRepo) UpdateEntry(ctx context.Context, entryID, userID string, updates *model.Entry) error {
	timer := utils.TrackDBOperation("update", "entries")
	defer timer.ObserveDuration()

	updates.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"tags":            updates.Tags,
			"title":           updates.Title,
			"timestamp":       updates.Timestamp,
			"notes":           updates.Notes,
			"hashtags":        updates.Hashtags,
			"property_values": updates.PropertyValues,
			"is_archived":     updates.IsArchived,
			"updated_at":      updates.UpdatedAt,
		},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": entryID, "user_id": userID}, update)
	if err != nil {
		utils.TrackError("database", "entry_update_failed")
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *EntriesRepo) DeleteEntry(ctx context.Context, entryID, userID string) error {
	timer := utils.TrackDBOperation("delete", "entries")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.DeleteOne(ctx, bson.M{"_id": entryID, "user_id": userID})
	if err != nil {
		utils.TrackError("database", "entry_deletion_failed")
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *EntriesRepo) SetArchived(ctx context.Context, entryID, userID string, archived bool) error {
	timer := utils.TrackDBOperation("update", "entries")
	defer timer.ObserveDuration()

	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": entryID, "user_id": userID},
		bson.M{"$set": bson.M{"is_archived": archived, "updated_at": time.Now()}})
	if err != nil {
		utils.TrackError("database", "entry_archive_failed")
		return fmt.Errorf("failed to update archive flag: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DetachTag removes a deleted tag from every entry that references it.
func (r *EntriesRepo) DetachTag(ctx context.Context, userID, tagID string) error {
	timer := utils.TrackDBOperation("update", "entries")
	defer timer.ObserveDuration()

	_, err := r.MongoCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "tags.tag_id": tagID},
		bson.M{"$pull": bson.M{"tags": bson.M{"tag_id": tagID}}})
	if err != nil {
		utils.TrackError("database", "tag_detach_failed")
		return fmt.Errorf("failed to detach tag from entries: %w", err)
	}
	return nil
}

// RenameTag updates the denormalized tag name on every entry.
func (r *EntriesRepo) RenameTag(ctx context.Context, userID, tagID, newName string) error {
	timer := utils.TrackDBOperation("update", "entries")
	defer timer.ObserveDuration()

	_, err := r.MongoCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "tags.tag_id": tagID},
		bson.M{"$set": bson.M{"tags.$[t].tag_name": newName}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"t.tag_id": tagID}},
		}))
	if err != nil {
		utils.TrackError("database", "tag_rename_failed")
		return fmt.Errorf("failed to rename tag on entries: %w", err)
	}
	return nil
}

func (r *EntriesRepo) CountUserEntries(ctx context.Context, userID string, archived bool) (int, error) {
	timer := utils.TrackDBOperation("count", "entries")
	defer timer.ObserveDuration()

	count, err := r.MongoCollection.CountDocuments(ctx, bson.M{
		"user_id":     userID,
		"is_archived": archived,
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountEntriesByTag returns, per tag name, how many non-archived entries
// carry it.
func (r *EntriesRepo) CountEntriesByTag(ctx context.Context, userID string) (map[string]int, error) {
	timer := utils.TrackDBOperation("aggregate", "entries")
	defer timer.ObserveDuration()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID, "is_archived": false}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{"_id": "$tags.tag_name", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		utils.TrackError("database", "entry_tag_count_failed")
		return nil, fmt.Errorf("failed to count entries by tag: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var row struct {
			TagName string `bson:"_id"`
			Count   int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.TagName] = row.Count
	}
	return counts, cursor.Err()
}

func (r *EntriesRepo) DeleteUserEntries(ctx context.Context, userID string) error {
	timer := utils.TrackDBOperation("delete", "entries")
	defer timer.ObserveDuration()

	_, err := r.MongoCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}
