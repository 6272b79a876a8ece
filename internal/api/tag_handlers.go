package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns all tags for the current user",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTag",
		Method:      http.MethodPost,
		Path:        "/api/v1/tags",
		Summary:     "Create tag",
		Description: "Creates a new tag",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTagBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/slug/{slug}",
		Summary:     "Get tag by slug",
		Description: "Returns a tag by its slug",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTagBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Renames or recolors a tag; the slug never changes",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag; tasks keep their other tags",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTag)
}

// === DTOs ===

// ListTagsResponse contains the user's tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"Tags ordered by name"`
}

// ListTagsOutput wraps the list for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// TagOutput wraps one tag for Huma.
type TagOutput struct {
	Body TagResponse
}

// TagBody is the request body for creating or updating a tag.
type TagBody struct {
	Name  string `json:"name" doc:"Tag name"`
	Color string `json:"color,omitempty" doc:"Display color"`
}

// CreateTagInput wraps the create request for Huma.
type CreateTagInput struct {
	Authorization string `header:"Authorization"`
	Body          TagBody
}

// TagByIDInput addresses one tag.
type TagByIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
}

// TagBySlugInput addresses one tag by slug.
type TagBySlugInput struct {
	Authorization string `header:"Authorization"`
	Slug          string `path:"slug" doc:"Tag slug"`
}

// UpdateTagInput wraps the update request for Huma.
type UpdateTagInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Tag ID"`
	Body          TagBody
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *AuthedInput) (*ListTagsOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tags, err := s.services.Tags.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = mapTag(t)
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.Create(ctx, user, service.CreateTagRequest{
		Name:  input.Body.Name,
		Color: input.Body.Color,
	})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: mapTag(tag)}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagByIDInput) (*TagOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: mapTag(tag)}, nil
}

func (s *Server) handleGetTagBySlug(ctx context.Context, input *TagBySlugInput) (*TagOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.GetBySlug(ctx, user.ID, input.Slug)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: mapTag(tag)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	tag, err := s.services.Tags.Update(ctx, user.ID, input.ID, service.UpdateTagRequest{
		Name:  input.Body.Name,
		Color: input.Body.Color,
	})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: mapTag(tag)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagByIDInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tags.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Tag deleted"}}, nil
}
