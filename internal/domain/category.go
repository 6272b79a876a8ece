package domain

import "time"

// Category groups tasks for one user. Every task belongs to exactly one
// category, and a category belongs to exactly one user.
//
// The slug is derived from the name once at creation and is never
// regenerated on rename; (owner, slug) is unique.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner implements Owned.
func (c *Category) Owner() string { return c.UserID }

// Touch updates the UpdatedAt timestamp.
func (c *Category) Touch() {
	c.UpdatedAt = time.Now()
}

// CategoryGroup is a category together with its filtered task children,
// as returned by the grouped home view. Groups with no matching tasks
// are dropped before this struct is ever built.
type CategoryGroup struct {
	Category *Category `json:"category"`
	Tasks    []*Task   `json:"tasks"`
}
