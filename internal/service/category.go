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

// CategoryService manages a user's task categories.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// CreateCategoryRequest contains the data for a new category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateCategoryRequest contains the editable category fields. Renaming
// never changes the slug.
type UpdateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// List returns all of the user's categories ordered by slug.
func (s *CategoryService) List(ctx context.Context, userID string) ([]*domain.Category, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Get retrieves one category by ID within the user's scope.
func (s *CategoryService) Get(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	category, err := s.store.GetCategory(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetBySlug retrieves one category by slug within the user's scope.
func (s *CategoryService) GetBySlug(ctx context.Context, userID, slug string) (*domain.Category, error) {
	category, err := s.store.GetCategoryBySlug(ctx, userID, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("category not found")
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// Create adds a category. The slug is derived from the name and the
// owner's username, and stays fixed for the category's lifetime.
func (s *CategoryService) Create(ctx context.Context, user *domain.User, req CreateCategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	slug := util.OwnedSlug(req.Name, user.Username)
	if slug == "" {
		return nil, domainerrors.FieldViolation("name", "must contain at least one letter or digit")
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}

	now := time.Now()
	category := &domain.Category{
		ID:        categoryID,
		UserID:    user.ID,
		Name:      req.Name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a category with this name already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// Update renames a category. The slug is untouched so existing links
// keep working.
func (s *CategoryService) Update(ctx context.Context, userID, categoryID string, req UpdateCategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.Get(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = req.Name
	category.Touch()

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// Delete removes a category and, through the schema, every task in it.
func (s *CategoryService) Delete(ctx context.Context, userID, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, userID, categoryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("category not found")
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
