// Package store defines the persistence contract for user-owned entities.
//
// Every read and write is scoped to the owning user: list operations
// return only the requesting user's entities (an empty userID yields an
// empty collection, never an error, so callers can safely chain), and
// lookups for entities owned by someone else report ErrNotFound exactly
// as if the entity did not exist.
package store

import (
	"context"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
)

// UpdateTaskOptions controls which relations UpdateTask replaces.
type UpdateTaskOptions struct {
	// ReplaceTags replaces the task's tag set with task.Tags.
	ReplaceTags bool
	// ReplaceSubtasks diffs the existing subtask set against
	// task.Subtasks by name: matching names are updated in place
	// (IDs preserved), new names are created, missing names are
	// deleted. The whole replacement commits atomically.
	ReplaceSubtasks bool
}

// Store is the persistence contract implemented by the SQLite store.
type Store interface {
	// Users

	// CreateUserWithDefaults persists the user together with their
	// bootstrap categories and tags in a single transaction.
	CreateUserWithDefaults(ctx context.Context, user *domain.User, categories []*domain.Category, tags []*domain.Tag) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	// DeleteUser removes the user and cascades to everything they own.
	DeleteUser(ctx context.Context, id string) error

	// Sessions

	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) error

	// Categories

	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, userID, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, userID, slug string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, userID, id string) error

	// Tags

	CreateTag(ctx context.Context, tag *domain.Tag) error
	GetTag(ctx context.Context, userID, id string) (*domain.Tag, error)
	GetTagBySlug(ctx context.Context, userID, slug string) (*domain.Tag, error)
	// GetTagsByNames resolves tag names within the user's scope; names
	// that do not exist for this user are simply absent from the result.
	GetTagsByNames(ctx context.Context, userID string, names []string) ([]*domain.Tag, error)
	ListTags(ctx context.Context, userID string) ([]*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) error
	DeleteTag(ctx context.Context, userID, id string) error

	// Tasks

	// CreateTask persists the task row, its tag links, and its subtasks
	// in one transaction.
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, userID, id string) (*domain.Task, error)
	GetTaskBySlug(ctx context.Context, userID, slug string) (*domain.Task, error)
	// ListTasks applies the criteria bag on top of the owner scope and
	// returns one page of tasks plus the total match count.
	ListTasks(ctx context.Context, userID string, criteria TaskCriteria) ([]*domain.Task, int, error)
	UpdateTask(ctx context.Context, task *domain.Task, opts UpdateTaskOptions) error
	SetTaskCompleted(ctx context.Context, userID, id string, completed bool) error
	DeleteTask(ctx context.Context, userID, id string) error
	// DeleteCompletedTasks removes all of the user's completed tasks and
	// reports how many were deleted.
	DeleteCompletedTasks(ctx context.Context, userID string) (int, error)

	// Subtasks

	CreateSubtask(ctx context.Context, subtask *domain.Subtask) error
	GetSubtask(ctx context.Context, userID, id string) (*domain.Subtask, error)
	SetSubtaskCompleted(ctx context.Context, userID, id string, completed bool) error
	DeleteSubtask(ctx context.Context, userID, id string) error

	Close() error
}
