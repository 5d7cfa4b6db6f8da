package client

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway is an in-memory Gateway whose per-operation hooks let each
// test script success and failure responses.
type fakeGateway struct {
	listTagsFn    func(ctx context.Context) ([]Tag, error)
	createTagFn   func(ctx context.Context, tag *Tag) (*Tag, error)
	updateTagFn   func(ctx context.Context, tagID string, tag *Tag) (*Tag, error)
	deleteTagFn   func(ctx context.Context, tagID string) error
	listEntriesFn func(ctx context.Context, q EntryQuery) (*EntriesPage, error)
	getEntryFn    func(ctx context.Context, entryID string) (*Entry, error)
	createEntryFn func(ctx context.Context, entry *Entry) (*Entry, error)
	updateEntryFn func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error)
	deleteEntryFn func(ctx context.Context, entryID string) error

	listEntriesCalls int
}

func (f *fakeGateway) ListTags(ctx context.Context) ([]Tag, error) {
	if f.listTagsFn == nil {
		return nil, nil
	}
	return f.listTagsFn(ctx)
}

func (f *fakeGateway) CreateTag(ctx context.Context, tag *Tag) (*Tag, error) {
	return f.createTagFn(ctx, tag)
}

func (f *fakeGateway) UpdateTag(ctx context.Context, tagID string, tag *Tag) (*Tag, error) {
	return f.updateTagFn(ctx, tagID, tag)
}

func (f *fakeGateway) DeleteTag(ctx context.Context, tagID string) error {
	return f.deleteTagFn(ctx, tagID)
}

func (f *fakeGateway) ListEntries(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
	f.listEntriesCalls++
	if f.listEntriesFn == nil {
		return &EntriesPage{}, nil
	}
	return f.listEntriesFn(ctx, q)
}

func (f *fakeGateway) GetEntry(ctx context.Context, entryID string) (*Entry, error) {
	return f.getEntryFn(ctx, entryID)
}

func (f *fakeGateway) CreateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	return f.createEntryFn(ctx, entry)
}

func (f *fakeGateway) UpdateEntry(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
	return f.updateEntryFn(ctx, entryID, updates, keepalive)
}

func (f *fakeGateway) DeleteEntry(ctx context.Context, entryID string) error {
	return f.deleteEntryFn(ctx, entryID)
}

func testEntry(id, title string, ts time.Time) Entry {
	return Entry{
		ID:        id,
		Title:     title,
		Timestamp: ts.Format(time.RFC3339),
	}
}

// seedStore puts entries straight into the cache, bypassing the gateway.
func seedStore(s *Store, entries ...Entry) {
	s.mu.Lock()
	s.entries = append([]Entry(nil), entries...)
	s.isLoaded = true
	s.mu.Unlock()
}

func TestAddEntryReplacesPlaceholderOnSuccess(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			created := *entry
			created.ID = "server-1"
			created.CreatedAt = now
			return &created, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	var notifications int
	store.Subscribe(func() { notifications++ })

	entry := testEntry("", "Run", now)
	created, err := store.AddEntry(context.Background(), &entry)
	require.NoError(t, err)
	assert.Equal(t, "server-1", created.ID)

	entries := store.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "server-1", entries[0].ID)
	assert.Equal(t, "Run", entries[0].Title)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.ID, "temp-"), "placeholder survived reconciliation")
	}
	assert.Equal(t, 2, notifications, "optimistic notify plus confirmation notify")
}

func TestAddEntryPlaceholderVisibleBeforeConfirmation(t *testing.T) {
	now := time.Now().UTC()
	release := make(chan struct{})
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			<-release
			created := *entry
			created.ID = "server-1"
			return &created, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	done := make(chan error, 1)
	go func() {
		entry := testEntry("", "Pending", now)
		_, err := store.AddEntry(context.Background(), &entry)
		done <- err
	}()

	// The optimistic placeholder must become visible while the remote call
	// is still in flight.
	require.Eventually(t, func() bool {
		entries := store.GetEntries()
		return len(entries) == 1 && strings.HasPrefix(entries[0].ID, "temp-")
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, "server-1", store.GetEntries()[0].ID)
}

func TestAddEntryRollsBackOnFailure(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			return nil, &APIError{StatusCode: 422, Message: "tag not found"}
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("e1", "Existing", now))

	before := store.GetEntries()

	entry := testEntry("", "Doomed", now)
	_, err := store.AddEntry(context.Background(), &entry)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 422, apiErr.StatusCode)

	assert.Equal(t, before, store.GetEntries(), "cache must match its pre-call value")
}

func TestAddEntryValidationFailsWithoutRemoteCall(t *testing.T) {
	called := false
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			called = true
			return entry, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	entry := Entry{Title: "Bad", Timestamp: "not-a-date"}
	_, err := store.AddEntry(context.Background(), &entry)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp")
	assert.False(t, called, "validation failure must not reach the gateway")
	assert.Empty(t, store.GetEntries())
}

func TestUpdateEntryRollsBackNotesOnFailure(t *testing.T) {
	now := time.Now().UTC()
	original := testEntry("e1", "Entry", now)
	original.Notes = "original notes"

	gw := &fakeGateway{
		updateEntryFn: func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
			return nil, &APIError{StatusCode: 500, Message: "boom"}
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, original)

	notes := "x"
	_, err := store.UpdateEntry(context.Background(), "e1", &EntryUpdates{Notes: &notes}, false)
	require.Error(t, err)

	entries := store.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "original notes", entries[0].Notes, "notes must be fully rolled back")
}

func TestUpdateEntryAppliesOptimisticallyThenConfirms(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		updateEntryFn: func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
			confirmed := testEntry(entryID, "Entry", now)
			confirmed.Notes = *updates.Notes
			confirmed.Tags = []EntryTag{{TagID: "t1", TagName: "Health"}}
			return &confirmed, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("e1", "Entry", now))

	notes := "updated"
	tagIDs := []string{"t1"}
	updated, err := store.UpdateEntry(context.Background(), "e1", &EntryUpdates{Notes: &notes, TagIDs: &tagIDs}, false)
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Notes)

	entries := store.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, []EntryTag{{TagID: "t1", TagName: "Health"}}, entries[0].Tags,
		"server-resolved tags land after confirmation")
}

func TestUpdateEntryNotCachedGoesStraightToRemote(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		updateEntryFn: func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
			e := testEntry(entryID, "Deep linked", now)
			return &e, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	title := "Deep linked"
	updated, err := store.UpdateEntry(context.Background(), "remote-only", &EntryUpdates{Title: &title}, false)
	require.NoError(t, err)
	assert.Equal(t, "remote-only", updated.ID)
	assert.Empty(t, store.GetEntries(), "no local mutation for an uncached entry")
}

func TestDeleteEntryReinsertsAtOriginalIndexOnFailure(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		deleteEntryFn: func(ctx context.Context, entryID string) error {
			return &APIError{StatusCode: 500, Message: "internal"}
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store,
		testEntry("e1", "First", now),
		testEntry("e2", "Second", now.Add(-time.Hour)),
		testEntry("e3", "Third", now.Add(-2*time.Hour)),
	)

	err := store.DeleteEntry(context.Background(), "e2")
	require.Error(t, err)

	entries := store.GetEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "e2", entries[1].ID, "rolled-back entry returns to its original index")
}

func TestArchiveEntryHidesWithoutReinsert(t *testing.T) {
	now := time.Now().UTC()
	var sentArchived *bool
	gw := &fakeGateway{
		updateEntryFn: func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
			sentArchived = updates.IsArchived
			e := testEntry(entryID, "Archived", now)
			e.IsArchived = true
			return &e, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("e1", "To archive", now))

	require.NoError(t, store.ArchiveEntry(context.Background(), "e1", true))
	require.NotNil(t, sentArchived)
	assert.True(t, *sentArchived)
	assert.Empty(t, store.GetEntries())
}

func TestArchiveEntryRollsBackOnFailure(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		updateEntryFn: func(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
			return nil, &APIError{StatusCode: 500, Message: "internal"}
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("e1", "Keep me", now))

	err := store.ArchiveEntry(context.Background(), "e1", true)
	require.Error(t, err)

	entries := store.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)
}

func TestGetEntriesExcludesArchived(t *testing.T) {
	now := time.Now().UTC()
	archived := testEntry("e2", "Hidden", now)
	archived.IsArchived = true
	archived.Tags = []EntryTag{{TagID: "t1"}}
	visible := testEntry("e1", "Visible", now)
	visible.Tags = []EntryTag{{TagID: "t1"}}

	store := NewStore(&fakeGateway{}, NewQueryState(""))
	seedStore(store, visible, archived)

	entries := store.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	withArchived := store.GetEntriesByTagID("t1", true)
	assert.Len(t, withArchived, 2)
	withoutArchived := store.GetEntriesByTagID("t1", false)
	assert.Len(t, withoutArchived, 1)
}

func TestGetEntriesReturnsCopies(t *testing.T) {
	now := time.Now().UTC()
	store := NewStore(&fakeGateway{}, NewQueryState(""))
	seedStore(store, testEntry("e1", "Original", now))

	entries := store.GetEntries()
	entries[0].Title = "mutated externally"

	assert.Equal(t, "Original", store.GetEntries()[0].Title,
		"external mutation must not bypass the notify mechanism")
}

func TestResetPaginationReplacesEntries(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		listEntriesFn: func(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
			return &EntriesPage{
				Entries: []Entry{testEntry("fresh-1", "Fresh", now)},
				Pagination: Pagination{
					HasMore:    true,
					NextCursor: &Cursor{After: now.Format(time.RFC3339Nano), AfterID: "fresh-1"},
				},
			}, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store,
		testEntry("stale-1", "Stale", now),
		testEntry("stale-2", "Stale", now),
	)

	require.NoError(t, store.ResetPagination(context.Background()))

	entries := store.GetEntries()
	require.Len(t, entries, 1, "reset replaces, never appends")
	assert.Equal(t, "fresh-1", entries[0].ID)

	hasMore, _ := store.Pagination()
	assert.True(t, hasMore)
}

func TestLoadMoreEntriesAppends(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{}
	gw.listEntriesFn = func(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
		assert.Equal(t, "p1-last", q.AfterID, "cursor from the previous page must be sent")
		return &EntriesPage{
			Entries:    []Entry{testEntry("p2-1", "Page two", now.Add(-time.Hour))},
			Pagination: Pagination{HasMore: false},
		}, nil
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("p1-last", "Page one", now))
	store.mu.Lock()
	store.hasMore = true
	store.nextCursor = &Cursor{After: now.Format(time.RFC3339Nano), AfterID: "p1-last"}
	store.mu.Unlock()

	store.LoadMoreEntries(context.Background())

	entries := store.GetEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "p1-last", entries[0].ID, "already-rendered items keep their identity")
	assert.Equal(t, "p2-1", entries[1].ID)

	hasMore, loading := store.Pagination()
	assert.False(t, hasMore)
	assert.False(t, loading)
}

func TestLoadMoreEntriesNoOpWhenExhausted(t *testing.T) {
	gw := &fakeGateway{}
	store := NewStore(gw, NewQueryState(""))
	store.mu.Lock()
	store.hasMore = false
	store.mu.Unlock()

	var notifications int
	store.Subscribe(func() { notifications++ })
	versionBefore := store.EntryVersion()

	store.LoadMoreEntries(context.Background())

	assert.Zero(t, gw.listEntriesCalls, "no network call")
	assert.Zero(t, notifications, "no notification")
	assert.Equal(t, versionBefore, store.EntryVersion(), "no state change")
}

func TestLoadMoreEntriesFailureIsSilent(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		listEntriesFn: func(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
			return nil, &APIError{StatusCode: 502, Message: "bad gateway"}
		},
	}
	store := NewStore(gw, NewQueryState(""))
	seedStore(store, testEntry("e1", "Kept", now))
	store.mu.Lock()
	store.hasMore = true
	store.mu.Unlock()

	store.LoadMoreEntries(context.Background())

	_, loading := store.Pagination()
	assert.False(t, loading, "spinner must clear so a retry can run")
	assert.Len(t, store.GetEntries(), 1)

	hasMore, _ := store.Pagination()
	assert.True(t, hasMore, "a failed fetch leaves the page retryable")
}

func TestSortEntriesLocallyStableDescending(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	equalA := testEntry("equal-a", "A", base)
	equalB := testEntry("equal-b", "B", base)
	earlier := testEntry("earlier", "C", base.Add(-time.Minute))

	view := NewQueryState("sortBy=timestamp&sortOrder=desc")
	store := NewStore(&fakeGateway{}, view)
	seedStore(store, equalA, equalB, earlier)

	store.SortEntriesLocally()

	entries := store.GetEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "earlier", entries[2].ID, "earlier entry sorts last under desc")
	assert.Equal(t, "equal-a", entries[0].ID, "equal timestamps keep pre-sort order")
	assert.Equal(t, "equal-b", entries[1].ID)
}

func TestSetSelectedTagIDTriggersReload(t *testing.T) {
	now := time.Now().UTC()
	var lastQuery EntryQuery
	gw := &fakeGateway{
		listEntriesFn: func(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
			lastQuery = q
			return &EntriesPage{Entries: []Entry{testEntry("filtered", "F", now)}}, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	require.NoError(t, store.SetSelectedTagID(context.Background(), "t1"))
	assert.Equal(t, []string{"t1"}, lastQuery.TagIDs)
	assert.Equal(t, 1, gw.listEntriesCalls)

	// Same value again: no reload.
	require.NoError(t, store.SetSelectedTagID(context.Background(), "t1"))
	assert.Equal(t, 1, gw.listEntriesCalls)
}

func TestEntryVersionBumpsOnStructuralMutation(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			created := *entry
			created.ID = "server-1"
			return &created, nil
		},
		deleteEntryFn: func(ctx context.Context, entryID string) error { return nil },
	}
	store := NewStore(gw, NewQueryState(""))

	v0 := store.EntryVersion()

	entry := testEntry("", "Tick", now)
	_, err := store.AddEntry(context.Background(), &entry)
	require.NoError(t, err)
	v1 := store.EntryVersion()
	assert.Greater(t, v1, v0)

	require.NoError(t, store.DeleteEntry(context.Background(), "server-1"))
	assert.Greater(t, store.EntryVersion(), v1)
}

func TestSubscribeUnsubscribeRemovesOnlyMatchingListener(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			created := *entry
			created.ID = fmt.Sprintf("server-%s", entry.Title)
			return &created, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	var a, b int
	unsubA := store.Subscribe(func() { a++ })
	store.Subscribe(func() { b++ })

	entry := testEntry("", "one", now)
	_, err := store.AddEntry(context.Background(), &entry)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	unsubA()

	second := testEntry("", "two", now)
	_, err = store.AddEntry(context.Background(), &second)
	require.NoError(t, err)
	assert.Greater(t, b, a, "remaining listener keeps firing after the other unsubscribes")
}

func TestLoadDataFailureLeavesStoreUnloaded(t *testing.T) {
	gw := &fakeGateway{
		listTagsFn: func(ctx context.Context) ([]Tag, error) {
			return nil, &APIError{StatusCode: 503, Message: "unavailable"}
		},
	}
	store := NewStore(gw, NewQueryState(""))

	store.LoadData(context.Background())

	assert.False(t, store.IsLoaded(), "never-loaded is a valid terminal state")
	assert.Empty(t, store.GetEntries())
}

func TestCreateTagThenEntryScenario(t *testing.T) {
	now := time.Now().UTC()
	gw := &fakeGateway{
		createTagFn: func(ctx context.Context, tag *Tag) (*Tag, error) {
			created := *tag
			created.ID = "tag-health"
			return &created, nil
		},
		createEntryFn: func(ctx context.Context, entry *Entry) (*Entry, error) {
			created := *entry
			created.ID = "entry-run"
			created.Tags = []EntryTag{{TagID: "tag-health", TagName: "Health"}}
			created.Hashtags = []string{"fitness"}
			return &created, nil
		},
	}
	store := NewStore(gw, NewQueryState(""))

	health, err := store.AddTag(context.Background(), &Tag{Name: "Health", Type: "habit"})
	require.NoError(t, err)
	assert.Equal(t, "tag-health", health.ID)

	tags := store.GetTags()
	require.Len(t, tags, 1)
	assert.Equal(t, "tag-health", tags[0].ID)

	entry := Entry{
		Tags:      []EntryTag{{TagID: health.ID}},
		Title:     "Run",
		Timestamp: now.Format(time.RFC3339),
		Notes:     "5k #fitness",
	}
	_, err = store.AddEntry(context.Background(), &entry)
	require.NoError(t, err)

	entries := store.GetEntries()
	require.NotEmpty(t, entries)
	assert.Equal(t, "Run", entries[0].Title)
	assert.True(t, entries[0].HasTag("tag-health"))
}

func TestAddTagRollsBackOnFailure(t *testing.T) {
	gw := &fakeGateway{
		createTagFn: func(ctx context.Context, tag *Tag) (*Tag, error) {
			return nil, &APIError{StatusCode: 409, Message: "tag name already exists"}
		},
	}
	store := NewStore(gw, NewQueryState(""))

	_, err := store.AddTag(context.Background(), &Tag{Name: "Dup", Type: "habit"})
	require.Error(t, err)
	assert.Empty(t, store.GetTags())
}
