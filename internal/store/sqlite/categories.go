package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, user_id, name, slug, created_at, updated_at`

// scanCategory scans a sql.Row (or sql.Rows via its Scan method) into a domain.Category.
func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var c domain.Category

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Slug,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// insertCategory inserts a category row using the given execer (db or tx).
func insertCategory(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, c *domain.Category) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO categories (id, user_id, name, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.UserID,
		c.Name,
		c.Slug,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("a category with this slug already exists")
	}
	return err
}

// CreateCategory inserts a new category.
// Returns store.ErrAlreadyExists on a duplicate (owner, slug) pair.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	return insertCategory(ctx, s.db, c)
}

// GetCategory retrieves a category by ID within the user's scope.
// A category owned by another user reports not found.
func (s *Store) GetCategory(ctx context.Context, userID, id string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND id = ?`, userID, id)
	return categoryOrNotFound(scanCategory(row))
}

// GetCategoryBySlug retrieves a category by slug within the user's scope.
func (s *Store) GetCategoryBySlug(ctx context.Context, userID, slug string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND slug = ?`, userID, slug)
	return categoryOrNotFound(scanCategory(row))
}

func categoryOrNotFound(c *domain.Category, err error) (*domain.Category, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("category not found")
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by slug.
// An empty userID yields an empty list.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	if userID == "" {
		return []*domain.Category{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY slug ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory renames a category. The slug is frozen at creation and
// deliberately not touched here.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		c.Name,
		formatTime(c.UpdatedAt),
		c.UserID,
		c.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("category not found")
	}
	return nil
}

// DeleteCategory removes a category within the user's scope.
// Its tasks (and their subtasks) cascade.
func (s *Store) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("category not found")
	}
	return nil
}
