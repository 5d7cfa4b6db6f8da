package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryStateDefaults(t *testing.T) {
	q := NewQueryState("")
	assert.Equal(t, "timestamp", q.SortBy())
	assert.Equal(t, "desc", q.SortOrder())
	assert.Empty(t, q.SelectedTagName())
	assert.Empty(t, q.HashtagFilters())
	assert.Empty(t, q.Action())
}

func TestQueryStateParsesInitialQuery(t *testing.T) {
	q := NewQueryState("sortBy=createdAt&sortOrder=asc&tag=Health&hashtags=fitness,sleep&action=edit")
	assert.Equal(t, "createdAt", q.SortBy())
	assert.Equal(t, "asc", q.SortOrder())
	assert.Equal(t, "Health", q.SelectedTagName())
	assert.Equal(t, []string{"fitness", "sleep"}, q.HashtagFilters())
	assert.Equal(t, "edit", q.Action())
}

func TestQueryStateSettersNotifySubscribers(t *testing.T) {
	q := NewQueryState("")

	var fired int
	unsub := q.Subscribe(func() { fired++ })

	q.SetSortBy("createdAt", "asc")
	q.SetSelectedTagName("Health")
	assert.Equal(t, 2, fired)

	unsub()
	q.SetAction("new")
	assert.Equal(t, 2, fired, "unsubscribed listener no longer fires")
}

func TestQueryStateBackRestoresPreviousView(t *testing.T) {
	q := NewQueryState("")

	q.SetSelectedTagName("Health")
	q.SetSelectedTagName("Sleep")
	assert.Equal(t, "Sleep", q.SelectedTagName())

	var fired int
	q.Subscribe(func() { fired++ })

	q.Back()
	assert.Equal(t, "Health", q.SelectedTagName())
	assert.Equal(t, 1, fired, "back navigation notifies like a setter")

	q.Back()
	assert.Empty(t, q.SelectedTagName())

	// Empty history: no-op, no notification.
	q.Back()
	assert.Equal(t, 2, fired)
}

func TestQueryStateClearingFilters(t *testing.T) {
	q := NewQueryState("hashtags=fitness&action=edit")

	q.SetHashtagFilters(nil)
	q.SetAction("")

	assert.Empty(t, q.HashtagFilters())
	assert.Empty(t, q.Action())
	assert.Empty(t, q.Encode())
}

func TestQueryStateEncodeRoundTrips(t *testing.T) {
	q := NewQueryState("")
	q.SetSortBy("timestamp", "desc")
	q.SetHashtagFilters([]string{"fitness"})

	reparsed := NewQueryState(q.Encode())
	assert.Equal(t, "timestamp", reparsed.SortBy())
	assert.Equal(t, "desc", reparsed.SortOrder())
	assert.Equal(t, []string{"fitness"}, reparsed.HashtagFilters())
}
