package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"tags": []Tag{}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	c.SetToken("abc123")

	_, err := c.ListTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)
}

func TestClientSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": "Invalid token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.ListTags(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid token", apiErr.Message)
}

func TestClientListEntriesBuildsQuery(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": EntriesPage{Pagination: Pagination{HasMore: false}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.ListEntries(context.Background(), EntryQuery{
		TagIDs:    []string{"t1", "t2"},
		Hashtags:  []string{"fitness"},
		SortBy:    "timestamp",
		SortOrder: "desc",
		Limit:     30,
		After:     "2026-08-01T12:00:00Z",
		AfterID:   "e99",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "t2"}, gotQuery["tagIds"])
	assert.Equal(t, []string{"fitness"}, gotQuery["hashtags"])
	assert.Equal(t, []string{"30"}, gotQuery["limit"])
	assert.Equal(t, []string{"2026-08-01T12:00:00Z"}, gotQuery["after"])
	assert.Equal(t, []string{"e99"}, gotQuery["afterId"])
}

func TestClientDecodesEnvelopedEntry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Run", body["title"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Resource created successfully",
			"data": map[string]interface{}{
				"entry": Entry{ID: "e1", Title: "Run", Timestamp: now.Format(time.RFC3339)},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	entry := Entry{Title: "Run", Timestamp: now.Format(time.RFC3339)}
	created, err := c.CreateEntry(context.Background(), &entry)
	require.NoError(t, err)
	assert.Equal(t, "e1", created.ID)
}

func TestClientDeleteHandlesNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	require.NoError(t, c.DeleteEntry(context.Background(), "e1"))
}

func TestClientLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"token":   "fresh-token",
				"refresh": "refresh-token",
				"user":    map[string]string{"id": "u1", "email": "a@b.c"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	result, err := c.Login(context.Background(), "a@b.c", "Secr3t!pass")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", result.Token)
	assert.Equal(t, "fresh-token", c.token)
	assert.Equal(t, "u1", result.User.ID)
}
