package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/utils"
)

const (
	maxTitleLength = 200
	maxNotesLength = 50000
)

type EntriesService struct {
	EntriesRepo *repository.EntriesRepo
	TagsRepo    *repository.TagsRepo
}

// EntryListOptions are the query parameters of the list endpoint after
// parsing. After/AfterID come straight from the previous page's cursor.
type EntryListOptions struct {
	UserID          string
	TagIDs          []string
	Hashtags        []string
	SortBy          string
	SortOrder       string
	Limit           int
	After           string
	AfterID         string
	IncludeArchived bool
}

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)

// ExtractHashtags pulls #hashtags out of markdown notes, lowercased and
// deduplicated, in order of first appearance.
func ExtractHashtags(notes string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(notes, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var hashtags []string
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			hashtags = append(hashtags, tag)
		}
	}
	return hashtags
}

// resolveTags turns tag ids into {tagId, tagName} pairs, rejecting ids
// that do not belong to the user. Pair order follows the request order.
func (svc *EntriesService) resolveTags(ctx context.Context, userID string, tagIDs []string) ([]model.EntryTag, error) {
	if len(tagIDs) == 0 {
		return []model.EntryTag{}, nil
	}

	tags, err := svc.TagsRepo.FindTagsByIDs(ctx, userID, tagIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}

	resolved := make([]model.EntryTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tag, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown tag id %q", id)
		}
		resolved = append(resolved, model.EntryTag{TagID: tag.ID, TagName: tag.Name})
	}
	return resolved, nil
}

func (svc *EntriesService) validateEntry(title, notes string) error {
	if len(title) > maxTitleLength {
		return errors.New("entry title exceeds maximum length")
	}
	if len(notes) > maxNotesLength {
		return errors.New("entry notes exceed maximum length")
	}
	return nil
}

// validatePropertyValues checks each value against the property
// definitions of the entry's tags, where one exists.
func (svc *EntriesService) validatePropertyValues(values []model.PropertyValue, tags []*model.Tag) error {
	defs := make(map[string]*model.PropertyDefinition)
	for _, tag := range tags {
		for i := range tag.Properties {
			defs[tag.Properties[i].ID] = &tag.Properties[i]
		}
	}

	for i := range values {
		if err := values[i].Validate(defs[values[i].PropertyID]); err != nil {
			return err
		}
	}
	return nil
}

func (svc *EntriesService) CreateEntry(ctx context.Context, userID string, req *dto.CreateEntryRequest) (*model.Entry, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}

	timestamp, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q: %w", req.Timestamp, err)
	}

	// Title may be empty: drafts are saved before the user names them
	if err := svc.validateEntry(req.Title, req.Notes); err != nil {
		return nil, err
	}

	resolved, err := svc.resolveTags(ctx, userID, req.TagIDs)
	if err != nil {
		return nil, err
	}

	if len(req.PropertyValues) > 0 {
		tags, err := svc.TagsRepo.FindTagsByIDs(ctx, userID, req.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := svc.validatePropertyValues(req.PropertyValues, tags); err != nil {
			return nil, err
		}
	}

	entry := &model.Entry{
		ID:             utils.NewID(),
		UserID:         userID,
		Tags:           resolved,
		Title:          strings.TrimSpace(req.Title),
		Timestamp:      timestamp,
		Notes:          req.Notes,
		Hashtags:       ExtractHashtags(req.Notes),
		PropertyValues: req.PropertyValues,
	}

	if err := svc.EntriesRepo.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	utils.TrackEntryOperation("create")
	return entry, nil
}

func (svc *EntriesService) GetEntry(ctx context.Context, entryID, userID string) (*model.Entry, error) {
	return svc.EntriesRepo.GetEntry(ctx, entryID, userID)
}

// UpdateEntry applies a partial update and returns the stored entry with
// tags fully resolved. Changing notes re-derives the hashtag list.
func (svc *EntriesService) UpdateEntry(ctx context.Context, entryID, userID string, req *dto.UpdateEntryRequest) (*model.Entry, error) {
	existing, err := svc.EntriesRepo.GetEntry(ctx, entryID, userID)
	if err != nil {
		return nil, err
	}

	updated := *existing

	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
		updated.Hashtags = ExtractHashtags(*req.Notes)
	}
	if req.Timestamp != nil {
		timestamp, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", *req.Timestamp, err)
		}
		updated.Timestamp = timestamp
	}
	if req.TagIDs != nil {
		resolved, err := svc.resolveTags(ctx, userID, *req.TagIDs)
		if err != nil {
			return nil, err
		}
		updated.Tags = resolved
	}
	if req.PropertyValues != nil {
		tagIDs := make([]string, len(updated.Tags))
		for i, t := range updated.Tags {
			tagIDs[i] = t.TagID
		}
		tags, err := svc.TagsRepo.FindTagsByIDs(ctx, userID, tagIDs)
		if err != nil {
			return nil, err
		}
		if err := svc.validatePropertyValues(*req.PropertyValues, tags); err != nil {
			return nil, err
		}
		updated.PropertyValues = *req.PropertyValues
	}
	if req.IsArchived != nil {
		updated.IsArchived = *req.IsArchived
	}

	if err := svc.validateEntry(updated.Title, updated.Notes); err != nil {
		return nil, err
	}

	if err := svc.EntriesRepo.UpdateEntry(ctx, entryID, userID, &updated); err != nil {
		return nil, err
	}

	if req.IsArchived != nil && len(diffFields(req)) == 1 {
		utils.TrackEntryOperation("archive")
	} else {
		utils.TrackEntryOperation("update")
	}
	return &updated, nil
}

// diffFields lists which update fields were supplied.
func diffFields(req *dto.UpdateEntryRequest) []string {
	var fields []string
	if req.TagIDs != nil {
		fields = append(fields, "tagIds")
	}
	if req.Title != nil {
		fields = append(fields, "title")
	}
	if req.Timestamp != nil {
		fields = append(fields, "timestamp")
	}
	if req.Notes != nil {
		fields = append(fields, "notes")
	}
	if req.PropertyValues != nil {
		fields = append(fields, "propertyValues")
	}
	if req.IsArchived != nil {
		fields = append(fields, "isArchived")
	}
	return fields
}

func (svc *EntriesService) DeleteEntry(ctx context.Context, entryID, userID string) error {
	if err := svc.EntriesRepo.DeleteEntry(ctx, entryID, userID); err != nil {
		return err
	}
	utils.TrackEntryOperation("delete")
	return nil
}

// ListEntries returns one page of entries plus the pagination envelope.
func (svc *EntriesService) ListEntries(ctx context.Context, opts EntryListOptions) (*dto.EntriesPageResponse, error) {
	if opts.UserID == "" {
		return nil, errors.New("user ID is required")
	}

	switch opts.SortBy {
	case "", "timestamp", "created_at", "createdAt":
	default:
		return nil, fmt.Errorf("unsupported sort field %q", opts.SortBy)
	}
	if opts.SortOrder != "" && opts.SortOrder != "asc" && opts.SortOrder != "desc" {
		return nil, fmt.Errorf("unsupported sort order %q", opts.SortOrder)
	}

	repoOpts := repository.EntrySearchOptions{
		UserID:          opts.UserID,
		TagIDs:          opts.TagIDs,
		Hashtags:        normalizeHashtags(opts.Hashtags),
		SortBy:          opts.SortBy,
		SortOrder:       opts.SortOrder,
		Limit:           opts.Limit,
		IncludeArchived: opts.IncludeArchived,
	}

	if opts.After != "" {
		after, err := time.Parse(time.RFC3339, opts.After)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor value %q: %w", opts.After, err)
		}
		repoOpts.Cursor = &repository.EntryCursor{After: after, AfterID: opts.AfterID}
	}

	entries, hasMore, next, err := svc.EntriesRepo.FindEntries(ctx, repoOpts)
	if err != nil {
		return nil, err
	}

	return dto.NewEntriesPageResponse(entries, hasMore, next), nil
}

func normalizeHashtags(hashtags []string) []string {
	var out []string
	for _, h := range hashtags {
		h = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(h), "#"))
		if h != "" {
			out = append(out, h)
		}
	}
	sort.Strings(out)
	return out
}
