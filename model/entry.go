package model

import "time"

// EntryTag is the resolved many-to-many association between an entry and
// a tag. TagName is denormalized so lists render without a second lookup.
type EntryTag struct {
	TagID   string `bson:"tag_id" json:"tagId"`
	TagName string `bson:"tag_name" json:"tagName"`
}

// Entry is a single journaled record. Timestamp is the user-chosen
// "when this happened" time and is distinct from CreatedAt.
type Entry struct {
	ID             string          `bson:"_id,omitempty" json:"id"`
	UserID         string          `bson:"user_id" json:"-"`
	Tags           []EntryTag      `bson:"tags,omitempty" json:"tags"`
	Title          string          `bson:"title" json:"title"`
	Timestamp      time.Time       `bson:"timestamp" json:"timestamp"`
	Notes          string          `bson:"notes" json:"notes"`
	Hashtags       []string        `bson:"hashtags,omitempty" json:"hashtags,omitempty"`
	PropertyValues []PropertyValue `bson:"property_values,omitempty" json:"propertyValues,omitempty"`
	IsArchived     bool            `bson:"is_archived" json:"isArchived"`
	CreatedAt      time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `bson:"updated_at" json:"updatedAt"`
}

// HasTag reports whether the entry is attached to the given tag.
func (e *Entry) HasTag(tagID string) bool {
	for _, t := range e.Tags {
		if t.TagID == tagID {
			return true
		}
	}
	return false
}
