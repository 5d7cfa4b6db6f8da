package dto

import "github.com/pophero110/trackly-sub002/model"

type CreateTagRequest struct {
	Name       string                     `json:"name" binding:"required"`
	Type       model.TagType              `json:"type" binding:"required"`
	Categories []string                   `json:"categories,omitempty"`
	ValueType  model.ValueType            `json:"valueType,omitempty"`
	Options    []model.TagOption          `json:"options,omitempty"`
	Properties []model.PropertyDefinition `json:"properties,omitempty"`
}

// UpdateTagRequest carries a full replacement of the mutable tag fields.
type UpdateTagRequest struct {
	Name       string                     `json:"name" binding:"required"`
	Type       model.TagType              `json:"type" binding:"required"`
	Categories []string                   `json:"categories,omitempty"`
	ValueType  model.ValueType            `json:"valueType,omitempty"`
	Options    []model.TagOption          `json:"options,omitempty"`
	Properties []model.PropertyDefinition `json:"properties,omitempty"`
}
