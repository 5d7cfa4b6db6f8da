package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTagValidate(t *testing.T) {
	valid := Tag{Name: "Health", Type: "habit"}
	assert.Empty(t, valid.Validate())

	missing := Tag{Type: "habit"}
	assert.Contains(t, missing.Validate(), "name must not be empty")

	badType := Tag{Name: "X", Type: "nope"}
	violations := badType.Validate()
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "unknown tag type")
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{Title: "Run", Timestamp: time.Now().Format(time.RFC3339)}
	assert.Empty(t, valid.Validate())

	// Empty title is permitted pending save.
	untitled := Entry{Timestamp: time.Now().Format(time.RFC3339)}
	assert.Empty(t, untitled.Validate())

	badDate := Entry{Timestamp: "yesterday"}
	violations := badDate.Validate()
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "RFC 3339")

	badTagRef := Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Tags:      []EntryTag{{TagName: "orphan"}},
	}
	assert.Contains(t, badTagRef.Validate(), "tag reference is missing a tag id")
}
