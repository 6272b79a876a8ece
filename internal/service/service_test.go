package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskdeckapp/taskdeck-server/internal/auth"
	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store/sqlite"
)

// testServices bundles everything the service tests need.
type testServices struct {
	users      *UserService
	sessions   *SessionService
	categories *CategoryService
	tags       *TagService
	tasks      *TaskService
}

// setupServices wires the full service stack against a temporary
// database.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokenService, err := auth.NewTokenService(
		"101112131415161718191a1b1c1d1e1f101112131415161718191a1b1c1d1e1f",
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	sessions := NewSessionService(s, tokenService, logger)
	return &testServices{
		users:      NewUserService(s, sessions, logger),
		sessions:   sessions,
		categories: NewCategoryService(s, logger),
		tags:       NewTagService(s, logger),
		tasks:      NewTaskService(s, logger),
	}
}

// registerUser creates an account through the service, returning the
// logged-in user.
func registerUser(t *testing.T, svc *testServices, username string) *domain.User {
	t.Helper()
	resp, err := svc.users.Register(context.Background(), RegisterRequest{
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)
	return resp.User
}
