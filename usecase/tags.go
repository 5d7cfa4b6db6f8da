package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pophero110/trackly-sub002/dto"
	"github.com/pophero110/trackly-sub002/model"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/utils"
)

const maxTagsPerUser = 200

var ErrTagNameTaken = errors.New("tag name already exists")

type TagsService struct {
	TagsRepo    *repository.TagsRepo
	EntriesRepo *repository.EntriesRepo
}

func (svc *TagsService) validateTag(name string, tagType model.TagType, valueType model.ValueType, properties []model.PropertyDefinition) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("tag name is required")
	}
	if len(name) > 100 {
		return errors.New("tag name exceeds maximum length")
	}
	if !model.ValidTagType(tagType) {
		return fmt.Errorf("unknown tag type %q", tagType)
	}
	if valueType != "" && !model.ValidValueType(valueType) {
		return fmt.Errorf("unknown value type %q", valueType)
	}
	for _, prop := range properties {
		if strings.TrimSpace(prop.Name) == "" {
			return errors.New("property name is required")
		}
		if !model.ValidValueType(prop.ValueType) {
			return fmt.Errorf("unknown value type %q for property %q", prop.ValueType, prop.Name)
		}
	}
	return nil
}

func (svc *TagsService) CreateTag(ctx context.Context, userID string, req *dto.CreateTagRequest) (*model.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if err := svc.validateTag(name, req.Type, req.ValueType, req.Properties); err != nil {
		return nil, err
	}

	existing, err := svc.TagsRepo.FindTagByName(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTagNameTaken
	}

	count, err := svc.TagsRepo.CountUserTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= maxTagsPerUser {
		return nil, errors.New("user has reached maximum tag limit")
	}

	tag := &model.Tag{
		ID:         utils.NewID(),
		UserID:     userID,
		Name:       name,
		Type:       req.Type,
		Categories: req.Categories,
		ValueType:  req.ValueType,
		Options:    req.Options,
		Properties: req.Properties,
	}
	// Property definitions get server-assigned ids too
	for i := range tag.Properties {
		if tag.Properties[i].ID == "" {
			tag.Properties[i].ID = utils.NewID()
		}
	}

	if err := svc.TagsRepo.CreateTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (svc *TagsService) GetUserTags(ctx context.Context, userID string) ([]*model.Tag, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	return svc.TagsRepo.GetUserTags(ctx, userID)
}

func (svc *TagsService) UpdateTag(ctx context.Context, tagID, userID string, req *dto.UpdateTagRequest) (*model.Tag, error) {
	existing, err := svc.TagsRepo.GetTag(ctx, tagID, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if err := svc.validateTag(name, req.Type, req.ValueType, req.Properties); err != nil {
		return nil, err
	}

	if name != existing.Name {
		taken, err := svc.TagsRepo.FindTagByName(ctx, userID, name)
		if err != nil {
			return nil, err
		}
		if taken != nil && taken.ID != tagID {
			return nil, ErrTagNameTaken
		}
	}

	updated := &model.Tag{
		ID:         existing.ID,
		UserID:     existing.UserID,
		Name:       name,
		Type:       req.Type,
		Categories: req.Categories,
		ValueType:  req.ValueType,
		Options:    req.Options,
		Properties: req.Properties,
		CreatedAt:  existing.CreatedAt,
	}
	for i := range updated.Properties {
		if updated.Properties[i].ID == "" {
			updated.Properties[i].ID = utils.NewID()
		}
	}

	if err := svc.TagsRepo.UpdateTag(ctx, tagID, userID, updated); err != nil {
		return nil, err
	}

	// Keep the denormalized tag name on entries in sync
	if name != existing.Name {
		if err := svc.EntriesRepo.RenameTag(ctx, userID, tagID, name); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// DeleteTag removes the tag and detaches it from every entry that
// references it. Entries themselves are kept.
func (svc *TagsService) DeleteTag(ctx context.Context, tagID, userID string) error {
	if err := svc.TagsRepo.DeleteTag(ctx, tagID, userID); err != nil {
		return err
	}
	return svc.EntriesRepo.DetachTag(ctx, userID, tagID)
}
