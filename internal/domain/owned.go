package domain

// Owned is implemented by every entity that belongs to exactly one user.
// Ownership is assigned at creation and never changes; all store queries
// are scoped by the owner and must never leak entities across users.
type Owned interface {
	Owner() string
}

// OwnedBy reports whether the entity belongs to the given user.
// An empty userID never owns anything.
func OwnedBy(e Owned, userID string) bool {
	return userID != "" && e.Owner() == userID
}
