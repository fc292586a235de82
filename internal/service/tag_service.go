package service

import (
	"context"
	"strings"

	"bloggr/internal/models"
	"bloggr/internal/repository"
	"bloggr/internal/validation"
)

const maxTagNameLen = 48

type TagService struct {
	tagRepo repository.TagRepository
}

func NewTagService(tagRepo repository.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

func (s *TagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.tagRepo.List(ctx)
}

func (s *TagService) GetTag(ctx context.Context, slug string) (*models.Tag, error) {
	return s.tagRepo.GetBySlug(ctx, slug)
}

// CreateTag creates a tag. Admin only; the slug is derived from the name.
func (s *TagService) CreateTag(ctx context.Context, ident models.Identity, name string, category models.TagCategory) (*models.Tag, error) {
	if !ident.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Tag name is required")
	}
	if len(name) > maxTagNameLen {
		return nil, models.NewValidationError("Tag name too long (max 48 characters)")
	}
	if category == "" {
		category = models.TagCategoryOther
	}
	if !models.ValidTagCategory(category) {
		return nil, models.NewValidationError("Invalid tag category")
	}

	slug := validation.Slugify(name)
	if slug == "" {
		return nil, models.NewValidationError("Tag name must contain at least one letter or digit")
	}

	tag := &models.Tag{Name: name, Slug: slug, Category: category}
	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// UpdateTag renames or recategorizes a tag. Admin only. The slug is stable;
// posts reference tags by identity, so a rename propagates everywhere.
func (s *TagService) UpdateTag(ctx context.Context, ident models.Identity, slug, name string, category models.TagCategory) (*models.Tag, error) {
	if !ident.IsAdmin() {
		return nil, models.NewForbiddenError("Admin access required")
	}

	tag, err := s.tagRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > maxTagNameLen {
			return nil, models.NewValidationError("Tag name too long (max 48 characters)")
		}
		tag.Name = name
	}
	if category != "" {
		if !models.ValidTagCategory(category) {
			return nil, models.NewValidationError("Invalid tag category")
		}
		tag.Category = category
	}

	if err := s.tagRepo.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *TagService) DeleteTag(ctx context.Context, ident models.Identity, slug string) error {
	if !ident.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	tag, err := s.tagRepo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.tagRepo.Delete(ctx, tag.ID)
}
