package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/auth"
	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	domainerrors "github.com/taskdeckapp/taskdeck-server/internal/errors"
	"github.com/taskdeckapp/taskdeck-server/internal/id"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
	"github.com/taskdeckapp/taskdeck-server/internal/util"
)

// UserService handles registration, login, and account management.
type UserService struct {
	store          store.Store
	sessionService *SessionService
	logger         *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	store store.Store,
	sessionService *SessionService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		store:          store,
		sessionService: sessionService,
		logger:         logger,
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password  string `json:"password" validate:"required,min=8,max=1024"`
	FirstName string `json:"first_name,omitempty" validate:"max=100"`
	LastName  string `json:"last_name,omitempty" validate:"max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest contains the editable profile fields.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

// AuthResponse contains the authenticated user and their tokens.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Register creates a new account together with its starter categories
// and tags, then logs the user straight in. The bootstrap is atomic: a
// failure leaves no partial account behind.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	categories, tags, err := bootstrapDefaults(user, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateUserWithDefaults(ctx, user, categories, tags); err != nil {
		var storeErr *store.Error
		if errors.As(err, &storeErr) && errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists(storeErr.Message)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User registered",
			"user_id", userID,
			"username", user.Username,
		)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// bootstrapDefaults builds the starter categories and tags every new
// account begins with.
func bootstrapDefaults(user *domain.User, now time.Time) ([]*domain.Category, []*domain.Tag, error) {
	var categories []*domain.Category
	for _, name := range domain.DefaultCategoryNames() {
		catID, err := id.Generate(id.PrefixCategory)
		if err != nil {
			return nil, nil, fmt.Errorf("generate category ID: %w", err)
		}
		categories = append(categories, &domain.Category{
			ID:        catID,
			UserID:    user.ID,
			Name:      name,
			Slug:      util.OwnedSlug(name, user.Username),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	var tags []*domain.Tag
	for _, def := range domain.DefaultTags() {
		tagID, err := id.Generate(id.PrefixTag)
		if err != nil {
			return nil, nil, fmt.Errorf("generate tag ID: %w", err)
		}
		tags = append(tags, &domain.Tag{
			ID:        tagID,
			UserID:    user.ID,
			Name:      def.Name,
			Color:     def.Color,
			Slug:      util.OwnedSlug(def.Name, user.Username),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	return categories, tags, nil
}

// Login authenticates a user and creates a new session.
func (s *UserService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the email exists.
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User logged in", "user_id", user.ID)
	}

	return &AuthResponse{
		User:            user,
		SessionResponse: *sessionResp,
	}, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the provided profile fields. Nil fields stay
// unchanged.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.Touch()

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes the account and everything it owns.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User deleted", "user_id", userID)
	}
	return nil
}
