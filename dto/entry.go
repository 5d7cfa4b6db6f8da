package dto

import (
	"time"

	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
)

type CreateEntryRequest struct {
	TagIDs         []string              `json:"tagIds"`
	Title          string                `json:"title"`
	Timestamp      string                `json:"timestamp" binding:"required"`
	Notes          string                `json:"notes"`
	PropertyValues []model.PropertyValue `json:"propertyValues,omitempty"`
}

// UpdateEntryRequest is a partial update; nil fields are left untouched.
type UpdateEntryRequest struct {
	TagIDs         *[]string              `json:"tagIds,omitempty"`
	Title          *string                `json:"title,omitempty"`
	Timestamp      *string                `json:"timestamp,omitempty"`
	Notes          *string                `json:"notes,omitempty"`
	PropertyValues *[]model.PropertyValue `json:"propertyValues,omitempty"`
	IsArchived     *bool                  `json:"isArchived,omitempty"`
}

type Cursor struct {
	After   string `json:"after"`
	AfterID string `json:"afterId"`
}

type Pagination struct {
	HasMore    bool    `json:"hasMore"`
	NextCursor *Cursor `json:"nextCursor"`
}

type EntriesPageResponse struct {
	Entries    []*model.Entry `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

// NewEntriesPageResponse converts a repository page into the wire shape.
// Cursor values travel as RFC 3339 strings.
func NewEntriesPageResponse(entries []*model.Entry, hasMore bool, next *repository.EntryCursor) *EntriesPageResponse {
	page := &EntriesPageResponse{
		Entries:    entries,
		Pagination: Pagination{HasMore: hasMore},
	}
	if next != nil {
		page.Pagination.NextCursor = &Cursor{
			After:   next.After.Format(time.RFC3339Nano),
			AfterID: next.AfterID,
		}
	}
	return page
}
