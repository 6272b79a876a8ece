package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, user_id, name, color, slug, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Color,
		&t.Slug,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// insertTag inserts a tag row using the given execer (db or tx).
func insertTag(ctx context.Context, execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}, t *domain.Tag) error {
	_, err := execer.ExecContext(ctx, `
		INSERT INTO tags (id, user_id, name, color, slug, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.UserID,
		t.Name,
		t.Color,
		t.Slug,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if isUniqueViolation(err) {
		if strings.Contains(err.Error(), "tags.user_id, tags.name") {
			return store.ErrAlreadyExists.WithMessage("a tag with this name already exists")
		}
		return store.ErrAlreadyExists.WithMessage("a tag with this slug already exists")
	}
	return err
}

// CreateTag inserts a new tag.
// Returns store.ErrAlreadyExists on duplicate (owner, name) or (owner, slug).
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	return insertTag(ctx, s.db, t)
}

// GetTag retrieves a tag by ID within the user's scope.
func (s *Store) GetTag(ctx context.Context, userID, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND id = ?`, userID, id)
	return tagOrNotFound(scanTag(row))
}

// GetTagBySlug retrieves a tag by slug within the user's scope.
func (s *Store) GetTagBySlug(ctx context.Context, userID, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? AND slug = ?`, userID, slug)
	return tagOrNotFound(scanTag(row))
}

func tagOrNotFound(t *domain.Tag, err error) (*domain.Tag, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("tag not found")
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagsByNames resolves tag names within the user's scope. Names that
// do not exist for this user are absent from the result; the caller
// decides whether that is an error.
func (s *Store) GetTagsByNames(ctx context.Context, userID string, names []string) ([]*domain.Tag, error) {
	if userID == "" || len(names) == 0 {
		return []*domain.Tag{}, nil
	}

	query, args, err := sq.Select(strings.Split(tagColumns, ", ")...).
		From("tags").
		Where(sq.Eq{"user_id": userID, "name": names}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	return s.queryTags(ctx, query, args...)
}

// ListTags returns the user's tags ordered by name.
// An empty userID yields an empty list.
func (s *Store) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	if userID == "" {
		return []*domain.Tag{}, nil
	}
	return s.queryTags(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE user_id = ? ORDER BY name ASC`, userID)
}

func (s *Store) queryTags(ctx context.Context, query string, args ...any) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// UpdateTag updates a tag's name and color. The slug is frozen at creation.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags SET name = ?, color = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		t.Name,
		t.Color,
		formatTime(t.UpdatedAt),
		t.UserID,
		t.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("a tag with this name already exists")
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("tag not found")
	}
	return nil
}

// DeleteTag removes a tag within the user's scope. Task associations
// cascade; tasks themselves are untouched.
func (s *Store) DeleteTag(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tags WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("tag not found")
	}
	return nil
}
