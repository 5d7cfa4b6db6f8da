package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyValueUnmarshalDispatchesOnValueType(t *testing.T) {
	var rating PropertyValue
	require.NoError(t, json.Unmarshal([]byte(`{"propertyId":"p1","valueType":"rating","value":4}`), &rating))
	assert.Equal(t, ValueTypeRating, rating.ValueType)
	assert.Equal(t, 4, rating.Rating)

	var duration PropertyValue
	require.NoError(t, json.Unmarshal([]byte(`{"propertyId":"p2","valueType":"duration","value":1800}`), &duration))
	assert.Equal(t, int64(1800), duration.Duration)

	var unknown PropertyValue
	err := json.Unmarshal([]byte(`{"propertyId":"p3","valueType":"emoji","value":"x"}`), &unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown value type")

	var missing PropertyValue
	err = json.Unmarshal([]byte(`{"propertyId":"p4","valueType":"text"}`), &missing)
	require.Error(t, err)
}

func TestPropertyValueMarshalWireShape(t *testing.T) {
	pv := PropertyValue{PropertyID: "p1", ValueType: ValueTypeColor, Color: "#ff8800"}
	data, err := json.Marshal(pv)
	require.NoError(t, err)
	assert.JSONEq(t, `{"propertyId":"p1","valueType":"color","value":"#ff8800"}`, string(data))
}

func TestPropertyValueValidate(t *testing.T) {
	tests := []struct {
		name    string
		value   PropertyValue
		def     *PropertyDefinition
		wantErr string
	}{
		{
			name:  "text always valid",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeText, Text: ""},
		},
		{
			name:    "rating below range",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeRating, Rating: 0},
			wantErr: "rating must be between 1 and 5",
		},
		{
			name:  "rating in range",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeRating, Rating: 5},
		},
		{
			name:    "rating above range",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeRating, Rating: 6},
			wantErr: "rating must be between 1 and 5",
		},
		{
			name:    "url without scheme",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeURL, URL: "example.com/path"},
			wantErr: "invalid url",
		},
		{
			name:  "url with scheme and host",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeURL, URL: "https://example.com/path"},
		},
		{
			name:  "date only form accepted",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeDate, Date: "2026-08-31"},
		},
		{
			name:    "garbage date rejected",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeDate, Date: "31/08/2026"},
			wantErr: "invalid date",
		},
		{
			name:  "select within options",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeSelect, Select: "low"},
			def: &PropertyDefinition{
				ID: "p", ValueType: ValueTypeSelect,
				Options: []TagOption{{Value: "low", Label: "Low"}, {Value: "high", Label: "High"}},
			},
		},
		{
			name:  "select outside options",
			value: PropertyValue{PropertyID: "p", ValueType: ValueTypeSelect, Select: "medium"},
			def: &PropertyDefinition{
				ID: "p", ValueType: ValueTypeSelect,
				Options: []TagOption{{Value: "low"}, {Value: "high"}},
			},
			wantErr: "not an option",
		},
		{
			name:    "negative duration",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeDuration, Duration: -1},
			wantErr: "duration cannot be negative",
		},
		{
			name:    "color must be six digit hex",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeColor, Color: "red"},
			wantErr: "invalid color",
		},
		{
			name:    "kind mismatch against definition",
			value:   PropertyValue{PropertyID: "p", ValueType: ValueTypeNumber, Number: 3},
			def:     &PropertyDefinition{ID: "p", ValueType: ValueTypeRating},
			wantErr: "expects rating value",
		},
		{
			name:    "missing property id",
			value:   PropertyValue{ValueType: ValueTypeText},
			wantErr: "property id is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.value.Validate(tt.def)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
