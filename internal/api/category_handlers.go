package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories for the current user",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Creates a new category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a category by ID",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategoryBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/slug/{slug}",
		Summary:     "Get category by slug",
		Description: "Returns a category by its slug",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategoryBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update category",
		Description: "Renames a category; the slug never changes",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes a category and all tasks in it",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// ListCategoriesResponse contains the user's categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"Categories ordered by slug"`
}

// ListCategoriesOutput wraps the list for Huma.
type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

// CategoryOutput wraps one category for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

// CategoryBody is the request body for creating or renaming a category.
type CategoryBody struct {
	Name string `json:"name" doc:"Category name"`
}

// CreateCategoryInput wraps the create request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CategoryBody
}

// CategoryByIDInput addresses one category.
type CategoryByIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

// CategoryBySlugInput addresses one category by slug.
type CategoryBySlugInput struct {
	Authorization string `header:"Authorization"`
	Slug          string `path:"slug" doc:"Category slug"`
}

// UpdateCategoryInput wraps the rename request for Huma.
type UpdateCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          CategoryBody
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, input *AuthedInput) (*ListCategoriesOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	categories, err := s.services.Categories.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = mapCategory(c)
	}
	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: resp}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Categories.Create(ctx, user, service.CreateCategoryRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *CategoryByIDInput) (*CategoryOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Categories.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleGetCategoryBySlug(ctx context.Context, input *CategoryBySlugInput) (*CategoryOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Categories.GetBySlug(ctx, user.ID, input.Slug)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	category, err := s.services.Categories.Update(ctx, user.ID, input.ID, service.UpdateCategoryRequest{
		Name: input.Body.Name,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategory(category)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryByIDInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Categories.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}
