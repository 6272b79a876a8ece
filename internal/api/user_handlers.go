package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Updates the authenticated user's profile fields",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCurrentUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me",
		Summary:     "Delete account",
		Description: "Deletes the account and everything it owns",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCurrentUser)
}

// === DTOs ===

// AuthedInput is the bare authenticated request.
type AuthedInput struct {
	Authorization string `header:"Authorization"`
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// UpdateProfileBody is the request body for profile updates.
type UpdateProfileBody struct {
	FirstName *string `json:"first_name,omitempty" doc:"First name"`
	LastName  *string `json:"last_name,omitempty" doc:"Last name"`
	Phone     *string `json:"phone,omitempty" doc:"Phone number"`
}

// UpdateProfileInput wraps the profile update request for Huma.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateProfileBody
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, input *AuthedInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(user)}, nil
}

func (s *Server) handleUpdateCurrentUser(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	updated, err := s.services.Users.UpdateProfile(ctx, user.ID, service.UpdateProfileRequest{
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Phone:     input.Body.Phone,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUser(updated)}, nil
}

func (s *Server) handleDeleteCurrentUser(ctx context.Context, input *AuthedInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	// Sessions go first so a failure can't leave live tokens behind.
	if err := s.services.Sessions.RevokeUserSessions(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.services.Users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Account deleted"}}, nil
}
