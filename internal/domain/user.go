package domain

import "time"

// User represents an authenticated user account in the system.
// The user is the root of all ownership: every category, tag, task, and
// subtask references exactly one user, and deleting a user removes
// everything they own.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`                   // Unique, used as the login identifier
	Username     string    `json:"username"`                // Unique, restricted character set
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	ImagePath    string    `json:"image_path,omitempty"` // Profile image, relative to the media root
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Owner implements Owned; a user owns itself.
func (u *User) Owner() string { return u.ID }

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}

// FullName returns the user's full name, composed from first and last names.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Name returns the best available name to display for the user.
// Prefers the full name, falls back to username.
func (u *User) Name() string {
	if full := u.FullName(); full != "" {
		return full
	}
	return u.Username
}
