package client

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// pageSize is the fixed entry page size of the initial load and every
// subsequent page fetch.
const pageSize = 30

// Store is an in-memory, change-notifying cache of the remote tag/entry
// collections with optimistic mutation, rollback on failure, and cursor
// pagination. The mutex guards only the synchronous portions of each
// operation; it is released around every remote call, so two mutations for
// the same id issued back to back may interleave. Each snapshots and rolls
// back against whatever state existed at its own entry point, the same
// window a single-threaded async caller would observe.
type Store struct {
	mu      sync.Mutex
	gateway Gateway
	view    ViewState

	tags          []Tag
	entries       []Entry
	selectedTagID string
	isLoaded      bool
	entryVersion  uint64

	hasMore       bool
	nextCursor    *Cursor
	isLoadingMore bool

	listeners      map[int]func()
	nextListenerID int
}

// NewStore returns an empty store reading view criteria from view and
// talking to the API through gateway.
func NewStore(gateway Gateway, view ViewState) *Store {
	return &Store{
		gateway:   gateway,
		view:      view,
		hasMore:   true,
		listeners: make(map[int]func()),
	}
}

// Subscribe registers a listener invoked with no arguments on every state
// change. The returned function removes only this registration. No
// ordering guarantee among listeners.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// LoadData fetches all tags and the first page of entries filtered by the
// current tag selection and hashtag filters. On failure the store stays
// unloaded; the caller retries or keeps showing a loading state.
func (s *Store) LoadData(ctx context.Context) {
	tags, err := s.gateway.ListTags(ctx)
	if err != nil {
		log.Printf("store: initial tag load failed: %v", err)
		return
	}

	page, err := s.gateway.ListEntries(ctx, s.entryQuery(nil))
	if err != nil {
		log.Printf("store: initial entry load failed: %v", err)
		return
	}

	s.mu.Lock()
	s.tags = tags
	s.entries = page.Entries
	s.hasMore = page.Pagination.HasMore
	s.nextCursor = page.Pagination.NextCursor
	s.isLoaded = true
	s.entryVersion++
	s.mu.Unlock()

	s.notify()
}

// IsLoaded reports whether the initial load has completed.
func (s *Store) IsLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoaded
}

// EntryVersion is a counter bumped on every structural entry mutation, so
// consumers can detect "did entries change" without comparing lists.
func (s *Store) EntryVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entryVersion
}

// entryQuery builds the list query from current view criteria. Callers may
// pass a cursor for page continuation.
func (s *Store) entryQuery(cursor *Cursor) EntryQuery {
	s.mu.Lock()
	selected := s.selectedTagID
	s.mu.Unlock()

	q := EntryQuery{
		Hashtags:  s.view.HashtagFilters(),
		SortBy:    s.view.SortBy(),
		SortOrder: s.view.SortOrder(),
		Limit:     pageSize,
	}
	if selected != "" {
		q.TagIDs = []string{selected}
	}
	if cursor != nil {
		q.After = cursor.After
		q.AfterID = cursor.AfterID
	}
	return q
}

// AddEntry creates an entry optimistically: a placeholder with a temporary
// id is prepended and visible to subscribers before the server confirms.
// On success the placeholder is replaced by the server entry and the list
// is re-sorted; on failure the placeholder is removed and the error
// returned.
func (s *Store) AddEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	if violations := entry.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("invalid entry: %s", strings.Join(violations, "; "))
	}

	tempID := "temp-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	optimistic := *entry
	optimistic.ID = tempID

	s.mu.Lock()
	s.entries = append([]Entry{optimistic}, s.entries...)
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	created, err := s.gateway.CreateEntry(ctx, entry)
	if err != nil {
		// If a concurrent operation already removed the placeholder this
		// is a no-op.
		s.mu.Lock()
		if i := s.indexOf(tempID); i >= 0 {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
		}
		s.entryVersion++
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	s.mu.Lock()
	if i := s.indexOf(tempID); i >= 0 {
		s.entries[i] = *created
	} else {
		s.entries = append([]Entry{*created}, s.entries...)
	}
	s.sortLocked()
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	return created, nil
}

// UpdateEntry applies a partial update optimistically. Tag-id changes are
// sent to the server but not applied locally, since they need
// server-resolved tag names; the confirmed entry carries them. An entry
// not in the cache (e.g. deep-linked) goes straight to the server with no
// local mutation.
func (s *Store) UpdateEntry(ctx context.Context, id string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return s.gateway.UpdateEntry(ctx, id, updates, keepalive)
	}

	snapshot := s.entries[idx]
	applyUpdates(&s.entries[idx], updates)
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	updated, err := s.gateway.UpdateEntry(ctx, id, updates, keepalive)
	if err != nil {
		s.mu.Lock()
		if i := s.indexOf(id); i >= 0 {
			s.entries[i] = snapshot
		}
		s.entryVersion++
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.entries[i] = *updated
	}
	if updates.Timestamp != nil {
		s.sortLocked()
	}
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	return updated, nil
}

// DeleteEntry removes an entry optimistically; on failure it is reinserted
// at its original index. An entry not in the cache goes straight to the
// server.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return s.gateway.DeleteEntry(ctx, id)
	}

	snapshot := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	if err := s.gateway.DeleteEntry(ctx, id); err != nil {
		s.mu.Lock()
		s.reinsert(snapshot, idx)
		s.entryVersion++
		s.mu.Unlock()
		s.notify()
		return err
	}
	return nil
}

// ArchiveEntry has the same optimistic shape as delete, but the remote
// operation flips the archived flag instead of deleting. On success the
// entry is not reinserted: the getters hide archived entries, so archiving
// and deleting look the same locally while archive stays reversible
// server-side.
func (s *Store) ArchiveEntry(ctx context.Context, id string, archived bool) error {
	updates := &EntryUpdates{IsArchived: &archived}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		_, err := s.gateway.UpdateEntry(ctx, id, updates, false)
		return err
	}

	snapshot := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	if _, err := s.gateway.UpdateEntry(ctx, id, updates, false); err != nil {
		s.mu.Lock()
		s.reinsert(snapshot, idx)
		s.entryVersion++
		s.mu.Unlock()
		s.notify()
		return err
	}
	return nil
}

// GetEntries returns a copy of the cached entries with archived entries
// excluded. Filtering is over the locally cached pages only.
func (s *Store) GetEntries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsArchived {
			out = append(out, e)
		}
	}
	return out
}

// GetEntriesByTagID returns cached entries carrying the tag, archived ones
// included only on request.
func (s *Store) GetEntriesByTagID(tagID string, includeArchived bool) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.HasTag(tagID) {
			continue
		}
		if e.IsArchived && !includeArchived {
			continue
		}
		out = append(out, e)
	}
	return out
}

// GetTags returns a copy of the cached tags.
func (s *Store) GetTags() []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Tag(nil), s.tags...)
}

// Pagination reports the current pagination state.
func (s *Store) Pagination() (hasMore, isLoadingMore bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore, s.isLoadingMore
}

// ResetPagination clears the cursor and refetches page 1 with the current
// sort and filter criteria, replacing the local list. Used whenever the
// filter criteria change.
func (s *Store) ResetPagination(ctx context.Context) error {
	s.mu.Lock()
	s.hasMore = true
	s.nextCursor = nil
	s.mu.Unlock()

	page, err := s.gateway.ListEntries(ctx, s.entryQuery(nil))
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = page.Entries
	s.hasMore = page.Pagination.HasMore
	s.nextCursor = page.Pagination.NextCursor
	s.entryVersion++
	s.mu.Unlock()
	s.notify()

	return nil
}

// LoadMoreEntries appends the next page to the local list. A no-op when
// there is nothing more or a fetch is already in flight. Failures are
// silent: the spinner clears and re-invoking retries.
func (s *Store) LoadMoreEntries(ctx context.Context) {
	s.mu.Lock()
	if !s.hasMore || s.isLoadingMore {
		s.mu.Unlock()
		return
	}
	s.isLoadingMore = true
	cursor := s.nextCursor
	s.mu.Unlock()
	s.notify()

	page, err := s.gateway.ListEntries(ctx, s.entryQuery(cursor))
	if err != nil {
		log.Printf("store: load more failed: %v", err)
		s.mu.Lock()
		s.isLoadingMore = false
		s.mu.Unlock()
		s.notify()
		return
	}

	s.mu.Lock()
	s.entries = append(s.entries, page.Entries...)
	s.hasMore = page.Pagination.HasMore
	s.nextCursor = page.Pagination.NextCursor
	s.isLoadingMore = false
	s.entryVersion++
	s.mu.Unlock()
	s.notify()
}

// SortEntriesLocally re-orders the already-loaded entries by the view's
// current sort criteria without a remote call. The sort is stable, so
// entries with equal sort values keep their relative order.
func (s *Store) SortEntriesLocally() {
	s.mu.Lock()
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) sortLocked() {
	sortBy := s.view.SortBy()
	desc := s.view.SortOrder() != "asc"

	sort.SliceStable(s.entries, func(i, j int) bool {
		a, b := sortValue(&s.entries[i], sortBy), sortValue(&s.entries[j], sortBy)
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
}

func sortValue(e *Entry, sortBy string) time.Time {
	if sortBy == "createdAt" {
		return e.CreatedAt
	}
	t, err := e.ParsedTimestamp()
	if err != nil {
		return time.Time{}
	}
	return t
}

// SelectedTagID returns the current tag filter, empty for "all".
func (s *Store) SelectedTagID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedTagID
}

// SetSelectedTagID updates the tag filter and, on change, reloads page 1,
// since selection changes the criteria the server applies.
func (s *Store) SetSelectedTagID(ctx context.Context, tagID string) error {
	s.mu.Lock()
	if s.selectedTagID == tagID {
		s.mu.Unlock()
		return nil
	}
	s.selectedTagID = tagID
	s.mu.Unlock()

	return s.ResetPagination(ctx)
}

// AddTag creates a tag optimistically, appending a placeholder that is
// replaced by the server tag on success and removed on failure.
func (s *Store) AddTag(ctx context.Context, tag *Tag) (*Tag, error) {
	if violations := tag.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("invalid tag: %s", strings.Join(violations, "; "))
	}

	tempID := "temp-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	optimistic := *tag
	optimistic.ID = tempID

	s.mu.Lock()
	s.tags = append(s.tags, optimistic)
	s.mu.Unlock()
	s.notify()

	created, err := s.gateway.CreateTag(ctx, tag)
	if err != nil {
		s.mu.Lock()
		if i := s.tagIndexOf(tempID); i >= 0 {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
		}
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	s.mu.Lock()
	if i := s.tagIndexOf(tempID); i >= 0 {
		s.tags[i] = *created
	} else {
		s.tags = append(s.tags, *created)
	}
	s.mu.Unlock()
	s.notify()

	return created, nil
}

// UpdateTag applies a tag update optimistically with snapshot rollback.
func (s *Store) UpdateTag(ctx context.Context, tagID string, tag *Tag) (*Tag, error) {
	if violations := tag.Validate(); len(violations) > 0 {
		return nil, fmt.Errorf("invalid tag: %s", strings.Join(violations, "; "))
	}

	s.mu.Lock()
	idx := s.tagIndexOf(tagID)
	if idx < 0 {
		s.mu.Unlock()
		return s.gateway.UpdateTag(ctx, tagID, tag)
	}

	snapshot := s.tags[idx]
	optimistic := *tag
	optimistic.ID = tagID
	s.tags[idx] = optimistic
	s.mu.Unlock()
	s.notify()

	updated, err := s.gateway.UpdateTag(ctx, tagID, tag)
	if err != nil {
		s.mu.Lock()
		if i := s.tagIndexOf(tagID); i >= 0 {
			s.tags[i] = snapshot
		}
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	s.mu.Lock()
	if i := s.tagIndexOf(tagID); i >= 0 {
		s.tags[i] = *updated
	}
	s.mu.Unlock()
	s.notify()

	return updated, nil
}

// DeleteTag removes a tag optimistically, reinserting it at its original
// index on failure.
func (s *Store) DeleteTag(ctx context.Context, tagID string) error {
	s.mu.Lock()
	idx := s.tagIndexOf(tagID)
	if idx < 0 {
		s.mu.Unlock()
		return s.gateway.DeleteTag(ctx, tagID)
	}

	snapshot := s.tags[idx]
	s.tags = append(s.tags[:idx], s.tags[idx+1:]...)
	s.mu.Unlock()
	s.notify()

	if err := s.gateway.DeleteTag(ctx, tagID); err != nil {
		s.mu.Lock()
		if idx > len(s.tags) {
			idx = len(s.tags)
		}
		s.tags = append(s.tags[:idx], append([]Tag{snapshot}, s.tags[idx:]...)...)
		s.mu.Unlock()
		s.notify()
		return err
	}
	return nil
}

func (s *Store) indexOf(entryID string) int {
	for i := range s.entries {
		if s.entries[i].ID == entryID {
			return i
		}
	}
	return -1
}

func (s *Store) tagIndexOf(tagID string) int {
	for i := range s.tags {
		if s.tags[i].ID == tagID {
			return i
		}
	}
	return -1
}

// reinsert puts a rolled-back entry back at its original index, clamped in
// case the list shrank in the meantime.
func (s *Store) reinsert(entry Entry, idx int) {
	if idx > len(s.entries) {
		idx = len(s.entries)
	}
	s.entries = append(s.entries[:idx], append([]Entry{entry}, s.entries[idx:]...)...)
}

// applyUpdates applies the non-tag fields of a partial update in place.
func applyUpdates(e *Entry, updates *EntryUpdates) {
	if updates.Title != nil {
		e.Title = *updates.Title
	}
	if updates.Timestamp != nil {
		e.Timestamp = *updates.Timestamp
	}
	if updates.Notes != nil {
		e.Notes = *updates.Notes
	}
	if updates.PropertyValues != nil {
		e.PropertyValues = *updates.PropertyValues
	}
	if updates.IsArchived != nil {
		e.IsArchived = *updates.IsArchived
	}
}
