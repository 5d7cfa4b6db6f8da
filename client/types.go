// Package client is the Go SDK for the Trackly API: a typed HTTP gateway,
// an optimistic in-memory Store over the remote tag/entry collections, and
// a query-string view state shared by both.
package client

import (
	"fmt"
	"time"

	"github.com/pophero110/trackly-sub002/model"
)

// TagOption is one selectable choice of a select-valued tag.
type TagOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PropertyDefinition describes a custom property a tag attaches to its
// entries.
type PropertyDefinition struct {
	ID        string      `json:"id,omitempty"`
	Name      string      `json:"name"`
	ValueType string      `json:"valueType"`
	Options   []TagOption `json:"options,omitempty"`
}

// Tag is a user-defined trackable category. Entries attach to zero or more
// tags.
type Tag struct {
	ID         string               `json:"id,omitempty"`
	Name       string               `json:"name"`
	Type       string               `json:"type"`
	Categories []string             `json:"categories,omitempty"`
	ValueType  string               `json:"valueType,omitempty"`
	Options    []TagOption          `json:"options,omitempty"`
	Properties []PropertyDefinition `json:"properties,omitempty"`
	CreatedAt  time.Time            `json:"createdAt,omitempty"`
	UpdatedAt  *time.Time           `json:"updatedAt,omitempty"`
}

// Validate returns the list of constraint violations, empty when the tag is
// well formed.
func (t *Tag) Validate() []string {
	var violations []string
	if t.Name == "" {
		violations = append(violations, "name must not be empty")
	}
	if !model.ValidTagType(model.TagType(t.Type)) {
		violations = append(violations, fmt.Sprintf("unknown tag type %q", t.Type))
	}
	if t.ValueType != "" && !model.ValidValueType(model.ValueType(t.ValueType)) {
		violations = append(violations, fmt.Sprintf("unknown value type %q", t.ValueType))
	}
	return violations
}

// EntryTag is an entry's reference to a tag, carrying the server-resolved
// name alongside the id.
type EntryTag struct {
	TagID   string `json:"tagId"`
	TagName string `json:"tagName,omitempty"`
}

// PropertyValue is one custom property value on an entry.
type PropertyValue struct {
	PropertyID string      `json:"propertyId"`
	ValueType  string      `json:"valueType"`
	Value      interface{} `json:"value"`
}

// Entry is a single logged record. Timestamp is the user-chosen "when this
// happened" time as an RFC 3339 string, distinct from CreatedAt.
type Entry struct {
	ID             string          `json:"id,omitempty"`
	Tags           []EntryTag      `json:"tags"`
	Title          string          `json:"title"`
	Timestamp      string          `json:"timestamp"`
	Notes          string          `json:"notes"`
	Hashtags       []string        `json:"hashtags,omitempty"`
	PropertyValues []PropertyValue `json:"propertyValues,omitempty"`
	IsArchived     bool            `json:"isArchived"`
	CreatedAt      time.Time       `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time      `json:"updatedAt,omitempty"`
}

const maxEntryTitleLength = 200

// Validate returns the list of constraint violations, empty when the entry
// is well formed. An empty title is permitted (pending save).
func (e *Entry) Validate() []string {
	var violations []string
	if _, err := e.ParsedTimestamp(); err != nil {
		violations = append(violations, fmt.Sprintf("timestamp %q is not a valid RFC 3339 date", e.Timestamp))
	}
	if len(e.Title) > maxEntryTitleLength {
		violations = append(violations, fmt.Sprintf("title exceeds %d characters", maxEntryTitleLength))
	}
	for _, tag := range e.Tags {
		if tag.TagID == "" {
			violations = append(violations, "tag reference is missing a tag id")
		}
	}
	for _, pv := range e.PropertyValues {
		if !model.ValidValueType(model.ValueType(pv.ValueType)) {
			violations = append(violations, fmt.Sprintf("property %q has unknown value type %q", pv.PropertyID, pv.ValueType))
		}
	}
	return violations
}

// ParsedTimestamp parses the user-chosen timestamp.
func (e *Entry) ParsedTimestamp() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Timestamp)
}

// HasTag reports whether the entry references the given tag id.
func (e *Entry) HasTag(tagID string) bool {
	for _, tag := range e.Tags {
		if tag.TagID == tagID {
			return true
		}
	}
	return false
}

// Cursor points past the last seen entry of a page. AfterID breaks ties
// when sort values repeat, so no item is skipped or duplicated across page
// boundaries.
type Cursor struct {
	After   string `json:"after"`
	AfterID string `json:"afterId"`
}

// Pagination is the page metadata returned by the entry list endpoint.
type Pagination struct {
	HasMore    bool    `json:"hasMore"`
	NextCursor *Cursor `json:"nextCursor"`
}

// EntriesPage is one page of the entry feed.
type EntriesPage struct {
	Entries    []Entry    `json:"entries"`
	Pagination Pagination `json:"pagination"`
}

// EntryUpdates is a partial entry update. Nil fields are left untouched by
// the server.
type EntryUpdates struct {
	TagIDs         *[]string        `json:"tagIds,omitempty"`
	Title          *string          `json:"title,omitempty"`
	Timestamp      *string          `json:"timestamp,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	PropertyValues *[]PropertyValue `json:"propertyValues,omitempty"`
	IsArchived     *bool            `json:"isArchived,omitempty"`
}
