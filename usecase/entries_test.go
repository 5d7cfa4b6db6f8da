package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  []string
	}{
		{
			name:  "plain tags",
			notes: "Ran 5k today #fitness #running",
			want:  []string{"fitness", "running"},
		},
		{
			name:  "lowercased and deduplicated",
			notes: "#Fitness again #fitness and #FITNESS",
			want:  []string{"fitness"},
		},
		{
			name:  "order of first appearance",
			notes: "#beta then #alpha then #beta",
			want:  []string{"beta", "alpha"},
		},
		{
			name:  "unicode letters and separators",
			notes: "#übung done, also #wohl_sein and #well-being",
			want:  []string{"übung", "wohl_sein", "well-being"},
		},
		{
			name:  "markdown heading is not a hashtag",
			notes: "# Heading\nsome text #real",
			want:  []string{"real"},
		},
		{
			name:  "no tags",
			notes: "nothing to see here",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHashtags(tt.notes))
		})
	}
}

func TestNormalizeHashtags(t *testing.T) {
	got := normalizeHashtags([]string{"#Fitness", " sleep ", "", "#", "Alpha"})
	assert.Equal(t, []string{"alpha", "fitness", "sleep"}, got)
}

func TestValidateEntryLengths(t *testing.T) {
	svc := &EntriesService{}

	longTitle := make([]byte, maxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'a'
	}
	assert.Error(t, svc.validateEntry(string(longTitle), ""))

	longNotes := make([]byte, maxNotesLength+1)
	for i := range longNotes {
		longNotes[i] = 'b'
	}
	assert.Error(t, svc.validateEntry("ok", string(longNotes)))

	assert.NoError(t, svc.validateEntry("", ""))
}
