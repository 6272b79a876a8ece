package domain

import "time"

// Subtask is a named checklist item inside a task. Its ownership is
// derived: a subtask always belongs to its parent task's user and the
// user reference is overwritten from the task at save time, never taken
// from client input.
type Subtask struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Owner implements Owned.
func (s *Subtask) Owner() string { return s.UserID }

// Touch updates the UpdatedAt timestamp.
func (s *Subtask) Touch() {
	s.UpdatedAt = time.Now()
}
