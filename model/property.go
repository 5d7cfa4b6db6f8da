package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// ValueType discriminates the custom property value union.
type ValueType string

const (
	ValueTypeText     ValueType = "text"
	ValueTypeNumber   ValueType = "number"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeURL      ValueType = "url"
	ValueTypeDate     ValueType = "date"
	ValueTypeSelect   ValueType = "select"
	ValueTypeRating   ValueType = "rating"
	ValueTypeDuration ValueType = "duration"
	ValueTypeColor    ValueType = "color"
)

// ValidValueType reports whether v is a supported property kind.
func ValidValueType(v ValueType) bool {
	switch v {
	case ValueTypeText, ValueTypeNumber, ValueTypeBoolean, ValueTypeURL,
		ValueTypeDate, ValueTypeSelect, ValueTypeRating, ValueTypeDuration,
		ValueTypeColor:
		return true
	}
	return false
}

// PropertyDefinition declares a custom property a tag attaches to its entries.
type PropertyDefinition struct {
	ID        string      `bson:"id" json:"id"`
	Name      string      `bson:"name" json:"name"`
	ValueType ValueType   `bson:"value_type" json:"valueType"`
	Options   []TagOption `bson:"options,omitempty" json:"options,omitempty"`
}

// PropertyValue is one recorded custom property value on an entry. The
// payload field that is populated depends on ValueType; the others stay
// at their zero value.
type PropertyValue struct {
	PropertyID string    `bson:"property_id" json:"propertyId"`
	ValueType  ValueType `bson:"value_type" json:"valueType"`

	Text     string  `bson:"text,omitempty"`
	Number   float64 `bson:"number,omitempty"`
	Boolean  bool    `bson:"boolean,omitempty"`
	URL      string  `bson:"url,omitempty"`
	Date     string  `bson:"date,omitempty"`
	Select   string  `bson:"select,omitempty"`
	Rating   int     `bson:"rating,omitempty"`
	Duration int64   `bson:"duration,omitempty"` // seconds
	Color    string  `bson:"color,omitempty"`
}

type propertyValueWire struct {
	PropertyID string          `json:"propertyId"`
	ValueType  ValueType       `json:"valueType"`
	Value      json.RawMessage `json:"value"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// UnmarshalJSON decodes the wire form {propertyId, valueType, value},
// dispatching the value payload on valueType.
func (p *PropertyValue) UnmarshalJSON(data []byte) error {
	var wire propertyValueWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if !ValidValueType(wire.ValueType) {
		return fmt.Errorf("unknown value type %q", wire.ValueType)
	}

	p.PropertyID = wire.PropertyID
	p.ValueType = wire.ValueType
	if len(wire.Value) == 0 {
		return errors.New("property value payload is required")
	}

	switch wire.ValueType {
	case ValueTypeText:
		return json.Unmarshal(wire.Value, &p.Text)
	case ValueTypeNumber:
		return json.Unmarshal(wire.Value, &p.Number)
	case ValueTypeBoolean:
		return json.Unmarshal(wire.Value, &p.Boolean)
	case ValueTypeURL:
		return json.Unmarshal(wire.Value, &p.URL)
	case ValueTypeDate:
		return json.Unmarshal(wire.Value, &p.Date)
	case ValueTypeSelect:
		return json.Unmarshal(wire.Value, &p.Select)
	case ValueTypeRating:
		return json.Unmarshal(wire.Value, &p.Rating)
	case ValueTypeDuration:
		return json.Unmarshal(wire.Value, &p.Duration)
	case ValueTypeColor:
		return json.Unmarshal(wire.Value, &p.Color)
	}
	return nil
}

// MarshalJSON emits the wire form matching UnmarshalJSON.
func (p PropertyValue) MarshalJSON() ([]byte, error) {
	var value interface{}
	switch p.ValueType {
	case ValueTypeText:
		value = p.Text
	case ValueTypeNumber:
		value = p.Number
	case ValueTypeBoolean:
		value = p.Boolean
	case ValueTypeURL:
		value = p.URL
	case ValueTypeDate:
		value = p.Date
	case ValueTypeSelect:
		value = p.Select
	case ValueTypeRating:
		value = p.Rating
	case ValueTypeDuration:
		value = p.Duration
	case ValueTypeColor:
		value = p.Color
	default:
		return nil, fmt.Errorf("unknown value type %q", p.ValueType)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(propertyValueWire{
		PropertyID: p.PropertyID,
		ValueType:  p.ValueType,
		Value:      raw,
	})
}

// Validate checks the payload against its declared kind. The definition
// supplies select options; pass nil when the property has none.
func (p *PropertyValue) Validate(def *PropertyDefinition) error {
	if p.PropertyID == "" {
		return errors.New("property id is required")
	}
	if def != nil && def.ValueType != p.ValueType {
		return fmt.Errorf("property %s expects %s value, got %s", p.PropertyID, def.ValueType, p.ValueType)
	}

	switch p.ValueType {
	case ValueTypeText, ValueTypeBoolean, ValueTypeNumber:
		return nil
	case ValueTypeURL:
		u, err := url.Parse(p.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid url %q", p.URL)
		}
	case ValueTypeDate:
		if _, err := time.Parse(time.RFC3339, p.Date); err != nil {
			if _, err := time.Parse("2006-01-02", p.Date); err != nil {
				return fmt.Errorf("invalid date %q", p.Date)
			}
		}
	case ValueTypeSelect:
		if def == nil || len(def.Options) == 0 {
			return nil
		}
		for _, opt := range def.Options {
			if opt.Value == p.Select {
				return nil
			}
		}
		return fmt.Errorf("value %q is not an option of property %s", p.Select, p.PropertyID)
	case ValueTypeRating:
		if p.Rating < 1 || p.Rating > 5 {
			return fmt.Errorf("rating must be between 1 and 5, got %d", p.Rating)
		}
	case ValueTypeDuration:
		if p.Duration < 0 {
			return errors.New("duration cannot be negative")
		}
	case ValueTypeColor:
		if !hexColor.MatchString(p.Color) {
			return fmt.Errorf("invalid color %q", p.Color)
		}
	default:
		return fmt.Errorf("unknown value type %q", p.ValueType)
	}
	return nil
}
