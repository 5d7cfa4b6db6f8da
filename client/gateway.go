package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-2xx response from the API, carrying the server-provided
// message and status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Gateway is the remote surface the Store depends on. *Client is the real
// implementation; tests substitute a fake.
type Gateway interface {
	ListTags(ctx context.Context) ([]Tag, error)
	CreateTag(ctx context.Context, tag *Tag) (*Tag, error)
	UpdateTag(ctx context.Context, tagID string, tag *Tag) (*Tag, error)
	DeleteTag(ctx context.Context, tagID string) error
	ListEntries(ctx context.Context, q EntryQuery) (*EntriesPage, error)
	GetEntry(ctx context.Context, entryID string) (*Entry, error)
	CreateEntry(ctx context.Context, entry *Entry) (*Entry, error)
	UpdateEntry(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error)
	DeleteEntry(ctx context.Context, entryID string) error
}

// EntryQuery is the query-parameter set of the entry list endpoint.
type EntryQuery struct {
	TagIDs          []string
	Hashtags        []string
	SortBy          string
	SortOrder       string
	Limit           int
	After           string
	AfterID         string
	IncludeArchived bool
}

// Client is a stateless HTTP gateway to the Trackly REST API. No retry
// logic: failures propagate to the caller's rollback paths.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient returns a gateway rooted at baseURL. Pass nil to use a default
// HTTP client with a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// SetToken sets the bearer credential attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// envelope is the server's response wrapper.
type envelope struct {
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &env); err != nil {
			if resp.StatusCode >= 300 {
				return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
			}
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

// AuthResult is the payload of a successful register or login call.
type AuthResult struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name,omitempty"`
	} `json:"user"`
	Token   string `json:"token"`
	Refresh string `json:"refresh"`
}

// Register creates an account and stores the returned bearer token on the
// client.
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if name != "" {
		body["name"] = name
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &result); err != nil {
		return nil, err
	}
	c.token = result.Token
	return &result, nil
}

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var result struct {
		Tags []Tag `json:"tags"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &result); err != nil {
		return nil, err
	}
	return result.Tags, nil
}

func (c *Client) CreateTag(ctx context.Context, tag *Tag) (*Tag, error) {
	var result struct {
		Tag *Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/tags", tag, &result); err != nil {
		return nil, err
	}
	return result.Tag, nil
}

func (c *Client) UpdateTag(ctx context.Context, tagID string, tag *Tag) (*Tag, error) {
	var result struct {
		Tag *Tag `json:"tag"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/tags/"+url.PathEscape(tagID), tag, &result); err != nil {
		return nil, err
	}
	return result.Tag, nil
}

func (c *Client) DeleteTag(ctx context.Context, tagID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tags/"+url.PathEscape(tagID), nil, nil)
}

func (c *Client) ListEntries(ctx context.Context, q EntryQuery) (*EntriesPage, error) {
	params := url.Values{}
	for _, id := range q.TagIDs {
		params.Add("tagIds", id)
	}
	for _, tag := range q.Hashtags {
		params.Add("hashtags", tag)
	}
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.After != "" {
		params.Set("after", q.After)
		params.Set("afterId", q.AfterID)
	}
	if q.IncludeArchived {
		params.Set("includeArchived", "true")
	}

	path := "/api/entries"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page EntriesPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetEntry(ctx context.Context, entryID string) (*Entry, error) {
	var result struct {
		Entry *Entry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(entryID), nil, &result); err != nil {
		return nil, err
	}
	return result.Entry, nil
}

func (c *Client) CreateEntry(ctx context.Context, entry *Entry) (*Entry, error) {
	body := map[string]interface{}{
		"tagIds":    entryTagIDs(entry.Tags),
		"title":     entry.Title,
		"timestamp": entry.Timestamp,
		"notes":     entry.Notes,
	}
	if len(entry.PropertyValues) > 0 {
		body["propertyValues"] = entry.PropertyValues
	}

	var result struct {
		Entry *Entry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/entries", body, &result); err != nil {
		return nil, err
	}
	return result.Entry, nil
}

// UpdateEntry sends a partial update. With keepalive the request runs on
// the background context so a caller-scoped cancel cannot abort a final
// flush while the caller is tearing down.
func (c *Client) UpdateEntry(ctx context.Context, entryID string, updates *EntryUpdates, keepalive bool) (*Entry, error) {
	if keepalive {
		ctx = context.Background()
	}
	var result struct {
		Entry *Entry `json:"entry"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(entryID), updates, &result); err != nil {
		return nil, err
	}
	return result.Entry, nil
}

func (c *Client) DeleteEntry(ctx context.Context, entryID string) error {
	return c.do(ctx, http.MethodDelete, "/api/entries/"+url.PathEscape(entryID), nil, nil)
}

func entryTagIDs(tags []EntryTag) []string {
	ids := make([]string, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.TagID)
	}
	return ids
}
