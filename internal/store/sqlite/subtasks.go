package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

// subtaskColumns is the ordered list of columns selected in subtask queries.
// Must match the scan order in scanSubtask.
const subtaskColumns = `id, task_id, user_id, name, is_completed, created_at, updated_at`

// scanSubtask scans a sql.Row (or sql.Rows via its Scan method) into a domain.Subtask.
func scanSubtask(scanner interface{ Scan(dest ...any) error }) (*domain.Subtask, error) {
	var sub domain.Subtask

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&sub.ID,
		&sub.TaskID,
		&sub.UserID,
		&sub.Name,
		&sub.IsCompleted,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sub.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	sub.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// insertSubtask inserts a subtask row using the given execer (db or tx).
func insertSubtask(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, sub *domain.Subtask) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO subtasks (id, task_id, user_id, name, is_completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.TaskID,
		sub.UserID,
		sub.Name,
		sub.IsCompleted,
		formatTime(sub.CreatedAt),
		formatTime(sub.UpdatedAt),
	)
	return err
}

// CreateSubtask inserts a single subtask. The caller is responsible for
// having derived UserID from the parent task.
func (s *Store) CreateSubtask(ctx context.Context, sub *domain.Subtask) error {
	return insertSubtask(ctx, s.db, sub)
}

// GetSubtask retrieves a subtask by ID within the user's scope.
func (s *Store) GetSubtask(ctx context.Context, userID, subtaskID string) (*domain.Subtask, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE user_id = ? AND id = ?`, userID, subtaskID)

	sub, err := scanSubtask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("subtask not found")
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// SetSubtaskCompleted flips a subtask's completion flag within the user's scope.
func (s *Store) SetSubtaskCompleted(ctx context.Context, userID, subtaskID string, completed bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE subtasks SET is_completed = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		completed, formatTime(time.Now()), userID, subtaskID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("subtask not found")
	}
	return nil
}

// DeleteSubtask removes a subtask within the user's scope.
func (s *Store) DeleteSubtask(ctx context.Context, userID, subtaskID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM subtasks WHERE user_id = ? AND id = ?`, userID, subtaskID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("subtask not found")
	}
	return nil
}
