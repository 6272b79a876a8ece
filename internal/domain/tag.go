package domain

import "time"

// Default tag colors are CSS custom property tokens the web client maps
// to actual colors.
const (
	TagColorYellow = "--background-yellow"
	TagColorPink   = "--background-pink"
	TagColorGreen  = "--background-green"
)

// Tag is a user-owned label attached to tasks (many-to-many).
// Both (owner, name) and (owner, slug) are unique.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"` // Display token, e.g. "--background-yellow"
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner implements Owned.
func (t *Tag) Owner() string { return t.UserID }

// Touch updates the UpdatedAt timestamp.
func (t *Tag) Touch() {
	t.UpdatedAt = time.Now()
}
