package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, username, password_hash, first_name, last_name, phone, image_path, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		phone     sql.NullString
		imagePath sql.NullString
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&phone,
		&imagePath,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.Phone = phone.String
	u.ImagePath = imagePath.String

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// insertUser inserts a user row using the given execer (db or tx).
func insertUser(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, u *domain.User) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, phone, image_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullString(u.Phone),
		nullString(u.ImagePath),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		if strings.Contains(err.Error(), "users.email") {
			return store.ErrAlreadyExists.WithMessage("email already in use")
		}
		if strings.Contains(err.Error(), "users.username") {
			return store.ErrAlreadyExists.WithMessage("username already taken")
		}
		return store.ErrAlreadyExists
	}
	return err
}

// CreateUserWithDefaults inserts the user together with their bootstrap
// categories and tags. The whole bootstrap commits atomically: either the
// user exists with all defaults, or nothing is persisted.
func (s *Store) CreateUserWithDefaults(ctx context.Context, user *domain.User, categories []*domain.Category, tags []*domain.Tag) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		for _, c := range categories {
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, t := range tags {
			if err := insertTag(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return userOrNotFound(scanUser(row))
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return userOrNotFound(scanUser(row))
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return userOrNotFound(scanUser(row))
}

func userOrNotFound(u *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("user not found")
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser updates mutable user fields. Email and username changes keep
// their global uniqueness constraints.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = ?, username = ?, password_hash = ?, first_name = ?, last_name = ?, phone = ?, image_path = ?, updated_at = ?
		WHERE id = ?`,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullString(u.Phone),
		nullString(u.ImagePath),
		formatTime(u.UpdatedAt),
		u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}

// DeleteUser removes the user. Categories, tags, tasks, subtasks, and
// sessions cascade via foreign keys.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("user not found")
	}
	return nil
}
