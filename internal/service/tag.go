package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	domainerrors "github.com/taskdeckapp/taskdeck-server/internal/errors"
	"github.com/taskdeckapp/taskdeck-server/internal/id"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
	"github.com/taskdeckapp/taskdeck-server/internal/util"
)

// TagService manages a user's tags.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

// CreateTagRequest contains the data for a new tag.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,max=50"`
}

// UpdateTagRequest contains the editable tag fields. Renaming never
// changes the slug.
type UpdateTagRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Color string `json:"color" validate:"omitempty,max=50"`
}

// List returns all of the user's tags ordered by name.
func (s *TagService) List(ctx context.Context, userID string) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Get retrieves one tag by ID within the user's scope.
func (s *TagService) Get(ctx context.Context, userID, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, userID, tagID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetBySlug retrieves one tag by slug within the user's scope.
func (s *TagService) GetBySlug(ctx context.Context, userID, slug string) (*domain.Tag, error) {
	tag, err := s.store.GetTagBySlug(ctx, userID, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return tag, nil
}

// Create adds a tag. The slug is derived from the name and the owner's
// username, and stays fixed for the tag's lifetime. An empty color falls
// back to the default yellow.
func (s *TagService) Create(ctx context.Context, user *domain.User, req CreateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	slug := util.OwnedSlug(req.Name, user.Username)
	if slug == "" {
		return nil, domainerrors.FieldViolation("name", "must contain at least one letter or digit")
	}

	color := req.Color
	if color == "" {
		color = domain.TagColorYellow
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	now := time.Now()
	tag := &domain.Tag{
		ID:        tagID,
		UserID:    user.ID,
		Name:      req.Name,
		Color:     color,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a tag with this name already exists")
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	return tag, nil
}

// Update renames or recolors a tag. The slug is untouched.
func (s *TagService) Update(ctx context.Context, userID, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.Get(ctx, userID, tagID)
	if err != nil {
		return nil, err
	}

	tag.Name = req.Name
	if req.Color != "" {
		tag.Color = req.Color
	}
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a tag with this name already exists")
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return tag, nil
}

// Delete removes a tag. Tasks keep their other tags.
func (s *TagService) Delete(ctx context.Context, userID, tagID string) error {
	if err := s.store.DeleteTag(ctx, userID, tagID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
