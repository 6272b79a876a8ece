package domain

import "time"

// DateLayout is the wire and storage format for task dates.
const DateLayout = "2006-01-02"

// Task is the central entity: a to-do item owned by one user, filed under
// one of that user's categories, optionally dated, optionally tagged, and
// optionally broken into subtasks.
//
// Referential ownership integrity: the category and every tag must belong
// to the same user as the task. This is validated before persistence, not
// left to foreign keys, so a cross-owner reference surfaces as a
// field-level validation error instead of a bare constraint failure.
type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	CategoryID  string     `json:"category_id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"` // Unique per owner, frozen at creation
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"` // Date only, no time component
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Loaded relations. Category is the owning category; Tags and
	// Subtasks are fully loaded on reads, nil on bare writes.
	Category *Category  `json:"category,omitempty"`
	Tags     []*Tag     `json:"tags,omitempty"`
	Subtasks []*Subtask `json:"subtasks,omitempty"`
}

// Owner implements Owned.
func (t *Task) Owner() string { return t.UserID }

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now()
}

// TagNames returns the names of the task's loaded tags, in load order.
func (t *Task) TagNames() []string {
	names := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		names[i] = tag.Name
	}
	return names
}

// DateString returns the task date formatted as YYYY-MM-DD, or "" when unset.
func (t *Task) DateString() string {
	if t.Date == nil {
		return ""
	}
	return t.Date.Format(DateLayout)
}
