package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates an account with its starter categories and tags, and logs the user in",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Authenticates with email and password",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Exchanges a refresh token for a new token pair",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Revokes the session behind a refresh token",
		Tags:        []string{"Auth"},
	}, s.handleLogout)
}

// === DTOs ===

// RegisterRequestBody is the request body for registration.
type RegisterRequestBody struct {
	Email     string `json:"email" doc:"Login email, unique"`
	Username  string `json:"username" doc:"Unique username, letters and digits"`
	Password  string `json:"password" doc:"Password, at least 8 characters"`
	FirstName string `json:"first_name,omitempty" doc:"First name"`
	LastName  string `json:"last_name,omitempty" doc:"Last name"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	Body          RegisterRequestBody
}

// LoginRequestBody is the request body for login.
type LoginRequestBody struct {
	Email    string `json:"email" doc:"Login email"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	Body          LoginRequestBody
}

// RefreshRequestBody is the request body for token refresh.
type RefreshRequestBody struct {
	RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	Body          RefreshRequestBody
}

// LogoutInput wraps the logout request for Huma.
type LogoutInput struct {
	Body RefreshRequestBody
}

// AuthResponse contains the token pair and the user.
type AuthResponse struct {
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Opaque refresh token"`
	TokenType    string       `json:"token_type" doc:"Always Bearer"`
	ExpiresIn    int          `json:"expires_in" doc:"Access token lifetime in seconds"`
	User         UserResponse `json:"user" doc:"The authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

// SessionOutput wraps a bare token pair for Huma.
type SessionOutput struct {
	Body struct {
		AccessToken  string `json:"access_token" doc:"PASETO access token"`
		RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
		TokenType    string `json:"token_type" doc:"Always Bearer"`
		ExpiresIn    int    `json:"expires_in" doc:"Access token lifetime in seconds"`
	}
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	if err := s.checkAuthRate(input.XForwardedFor, input.XRealIP); err != nil {
		return nil, err
	}

	resp, err := s.services.Users.Register(ctx, service.RegisterRequest{
		Email:     input.Body.Email,
		Username:  input.Body.Username,
		Password:  input.Body.Password,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	if err := s.checkAuthRate(input.XForwardedFor, input.XRealIP); err != nil {
		return nil, err
	}

	resp, err := s.services.Users.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{Body: mapAuthResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*SessionOutput, error) {
	if err := s.checkAuthRate(input.XForwardedFor, input.XRealIP); err != nil {
		return nil, err
	}

	resp, err := s.services.Sessions.RefreshSession(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, err
	}

	out := &SessionOutput{}
	out.Body.AccessToken = resp.AccessToken
	out.Body.RefreshToken = resp.RefreshToken
	out.Body.TokenType = resp.TokenType
	out.Body.ExpiresIn = resp.ExpiresIn
	return out, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Sessions.RevokeSession(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Logged out successfully"}}, nil
}

// === Helpers ===

func mapAuthResponse(resp *service.AuthResponse) AuthResponse {
	return AuthResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    resp.TokenType,
		ExpiresIn:    resp.ExpiresIn,
		User:         mapUser(resp.User),
	}
}
