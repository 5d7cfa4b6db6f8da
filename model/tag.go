package model

import "time"

// TagType is the fixed set of trackable categories a tag can be.
type TagType string

const (
	TagTypeHabit    TagType = "habit"
	TagTypeActivity TagType = "activity"
	TagTypeMood     TagType = "mood"
	TagTypeMetric   TagType = "metric"
	TagTypeJournal  TagType = "journal"
)

// ValidTagType reports whether t is one of the supported tag kinds.
func ValidTagType(t TagType) bool {
	switch t {
	case TagTypeHabit, TagTypeActivity, TagTypeMood, TagTypeMetric, TagTypeJournal:
		return true
	}
	return false
}

// TagOption is one selectable value for select-typed tags.
type TagOption struct {
	Value string `bson:"value" json:"value"`
	Label string `bson:"label" json:"label"`
}

type Tag struct {
	ID         string               `bson:"_id,omitempty" json:"id"`
	UserID     string               `bson:"user_id" json:"-"`
	Name       string               `bson:"name" json:"name" binding:"required"`
	Type       TagType              `bson:"type" json:"type" binding:"required"`
	Categories []string             `bson:"categories,omitempty" json:"categories,omitempty"`
	ValueType  ValueType            `bson:"value_type,omitempty" json:"valueType,omitempty"`
	Options    []TagOption          `bson:"options,omitempty" json:"options,omitempty"`
	Properties []PropertyDefinition `bson:"properties,omitempty" json:"properties,omitempty"`
	CreatedAt  time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt  *time.Time           `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}
