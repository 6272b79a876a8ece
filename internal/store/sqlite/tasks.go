package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	"github.com/taskdeckapp/taskdeck-server/internal/id"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

// taskColumns is the ordered list of task columns followed by the joined
// category columns. Must match the scan order in scanTask.
const taskColumns = `t.id, t.user_id, t.category_id, t.name, t.slug, t.description, t.date, t.is_completed, t.created_at, t.updated_at,
	c.id, c.user_id, c.name, c.slug, c.created_at, c.updated_at`

// scanTask scans a joined tasks/categories row into a domain.Task with
// its Category populated.
func scanTask(scanner interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var (
		t domain.Task
		c domain.Category

		description sql.NullString
		date        sql.NullString
		createdAt   string
		updatedAt   string

		catCreatedAt string
		catUpdatedAt string
	)

	err := scanner.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&t.Name,
		&t.Slug,
		&description,
		&date,
		&t.IsCompleted,
		&createdAt,
		&updatedAt,
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Slug,
		&catCreatedAt,
		&catUpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Description = description.String

	t.Date, err = parseDate(date)
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
	c.CreatedAt, err = parseTime(catCreatedAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(catUpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Category = &c
	return &t, nil
}

// taskFilter holds the WHERE fragments and join requirements derived from
// a criteria bag. The same filter feeds both the page query and the count
// query so the two can never disagree.
type taskFilter struct {
	conds       []sq.Sqlizer
	needTagJoin bool
}

// likeEscaper neutralizes LIKE metacharacters so a search term only ever
// matches literal substring content.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildTaskFilter translates the criteria bag into SQL predicates. The
// owner scope is always the first predicate; everything else is ANDed on
// top of it.
func buildTaskFilter(userID string, c store.TaskCriteria) taskFilter {
	f := taskFilter{
		conds: []sq.Sqlizer{sq.Eq{"t.user_id": userID}},
	}

	if len(c.CategorySlugs) > 0 {
		f.conds = append(f.conds, sq.Eq{"c.slug": c.CategorySlugs})
	}
	if len(c.TagNames) > 0 {
		f.needTagJoin = true
		f.conds = append(f.conds, sq.Eq{"g.name": c.TagNames})
	}
	if c.Date != nil {
		f.conds = append(f.conds, sq.Eq{"t.date": c.Date.Format(dateLayout)})
	}
	if c.DateAfter != nil {
		f.conds = append(f.conds, sq.GtOrEq{"t.date": c.DateAfter.Format(dateLayout)})
	}
	if c.DateBefore != nil {
		f.conds = append(f.conds, sq.LtOrEq{"t.date": c.DateBefore.Format(dateLayout)})
	}
	if c.IsCompleted != nil {
		f.conds = append(f.conds, sq.Eq{"t.is_completed": *c.IsCompleted})
	}
	if c.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(c.Search)) + "%"
		f.conds = append(f.conds, sq.Expr(
			"(LOWER(t.name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(t.description, '')) LIKE ? ESCAPE '\\')",
			pattern, pattern,
		))
	}

	return f
}

// apply attaches the filter's joins and predicates to a select builder.
func (f taskFilter) apply(b sq.SelectBuilder) sq.SelectBuilder {
	b = b.From("tasks t").
		Join("categories c ON c.id = t.category_id")
	if f.needTagJoin {
		b = b.Join("task_tags tt ON tt.task_id = t.id").
			Join("tags g ON g.id = tt.tag_id")
	}
	for _, cond := range f.conds {
		b = b.Where(cond)
	}
	return b
}

// orderClause maps a sort key to its ORDER BY expression. The key is a
// total order on one column; ties keep insertion order, which callers
// must not rely on.
func orderClause(key store.SortKey) string {
	switch key {
	case store.SortCategoryAsc, "":
		return "c.slug ASC"
	case store.SortCategoryDesc:
		return "c.slug DESC"
	case store.SortDateAsc:
		return "t.date ASC"
	case store.SortDateDesc:
		return "t.date DESC"
	case store.SortCompletedAsc:
		return "t.is_completed ASC"
	case store.SortCompletedDesc:
		return "t.is_completed DESC"
	default:
		return "c.slug ASC"
	}
}

// ListTasks applies the criteria bag on top of the owner scope.
// Returns one page of tasks (with categories, tags, and subtasks loaded)
// plus the total match count. An empty userID yields an empty result.
//
// Joining through task_tags can produce one row per matching tag;
// DISTINCT collapses those so a task appears exactly once no matter how
// many requested tags it carries.
func (s *Store) ListTasks(ctx context.Context, userID string, criteria store.TaskCriteria) ([]*domain.Task, int, error) {
	if userID == "" {
		return []*domain.Task{}, 0, nil
	}

	criteria.Page.Normalize()
	filter := buildTaskFilter(userID, criteria)

	// Total count first; the page query may land past the end.
	countQuery, countArgs, err := filter.apply(sq.Select("COUNT(DISTINCT t.id)")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	b := filter.apply(sq.Select(taskColumns).Distinct()).
		OrderBy(orderClause(criteria.Sort))
	if criteria.Page.Size > 0 {
		b = b.Limit(uint64(criteria.Page.Size)).Offset(uint64(criteria.Page.Offset()))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tasks := []*domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.loadTaskRelations(ctx, tasks); err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// GetTask retrieves a task by ID within the user's scope, with relations loaded.
func (s *Store) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	return s.getTask(ctx, userID, "t.id", taskID)
}

// GetTaskBySlug retrieves a task by slug within the user's scope, with relations loaded.
func (s *Store) GetTaskBySlug(ctx context.Context, userID, slug string) (*domain.Task, error) {
	return s.getTask(ctx, userID, "t.slug", slug)
}

func (s *Store) getTask(ctx context.Context, userID, column, value string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks t
		JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ? AND ` + column + ` = ?`

	row := s.db.QueryRowContext(ctx, query, userID, value)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("task not found")
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadTaskRelations(ctx, []*domain.Task{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// loadTaskRelations populates Tags and Subtasks for the given tasks in
// two batch queries.
func (s *Store) loadTaskRelations(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Task, len(tasks))
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		byID[t.ID] = t
		t.Tags = []*domain.Tag{}
		t.Subtasks = []*domain.Subtask{}
		ids[i] = t.ID
	}

	// Tags.
	tagQuery, tagArgs, err := sq.Select(
		"tt.task_id",
		"tags.id", "tags.user_id", "tags.name", "tags.color", "tags.slug",
		"tags.created_at", "tags.updated_at",
	).
		From("task_tags tt").
		Join("tags ON tags.id = tt.tag_id").
		Where(sq.Eq{"tt.task_id": ids}).
		OrderBy("tags.name ASC").
		ToSql()
	if err != nil {
		return err
	}

	tagRows, err := s.db.QueryContext(ctx, tagQuery, tagArgs...)
	if err != nil {
		return err
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var taskID string
		var tag domain.Tag
		var createdAt, updatedAt string
		if err := tagRows.Scan(&taskID, &tag.ID, &tag.UserID, &tag.Name, &tag.Color, &tag.Slug, &createdAt, &updatedAt); err != nil {
			return err
		}
		if tag.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if tag.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}
		if t, ok := byID[taskID]; ok {
			t.Tags = append(t.Tags, &tag)
		}
	}
	if err := tagRows.Err(); err != nil {
		return err
	}

	// Subtasks.
	subQuery, subArgs, err := sq.Select(strings.Split(subtaskColumns, ", ")...).
		From("subtasks").
		Where(sq.Eq{"task_id": ids}).
		OrderBy("created_at ASC, id ASC").
		ToSql()
	if err != nil {
		return err
	}

	subRows, err := s.db.QueryContext(ctx, subQuery, subArgs...)
	if err != nil {
		return err
	}
	defer subRows.Close()

	for subRows.Next() {
		sub, err := scanSubtask(subRows)
		if err != nil {
			return err
		}
		if t, ok := byID[sub.TaskID]; ok {
			t.Subtasks = append(t.Subtasks, sub)
		}
	}
	return subRows.Err()
}

// CreateTask persists the task row, its tag links, and its subtasks in
// one transaction. Subtasks without IDs get one assigned.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, user_id, category_id, name, slug, description, date, is_completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID,
			t.UserID,
			t.CategoryID,
			t.Name,
			t.Slug,
			nullString(t.Description),
			formatDate(t.Date),
			t.IsCompleted,
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("a task with this slug already exists")
		}
		if err != nil {
			return err
		}

		if err := insertTagLinks(ctx, tx, t); err != nil {
			return err
		}

		for _, sub := range t.Subtasks {
			sub.TaskID = t.ID
			sub.UserID = t.UserID
			if sub.ID == "" {
				sub.ID, err = id.Generate(id.PrefixSubtask)
				if err != nil {
					return err
				}
			}
			if sub.CreatedAt.IsZero() {
				sub.CreatedAt = t.CreatedAt
				sub.UpdatedAt = t.CreatedAt
			}
			if err := insertSubtask(ctx, tx, sub); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateTask updates the task row and, per opts, replaces its tag set and
// diffs its subtask set. The whole update commits atomically so a
// concurrent reader never observes a partially replaced subtask set.
func (s *Store) UpdateTask(ctx context.Context, t *domain.Task, opts store.UpdateTaskOptions) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET category_id = ?, name = ?, description = ?, date = ?, is_completed = ?, updated_at = ?
			WHERE user_id = ? AND id = ?`,
			t.CategoryID,
			t.Name,
			nullString(t.Description),
			formatDate(t.Date),
			t.IsCompleted,
			formatTime(t.UpdatedAt),
			t.UserID,
			t.ID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound.WithMessage("task not found")
		}

		if opts.ReplaceTags {
			if _, err := tx.ExecContext(ctx, `DELETE FROM task_tags WHERE task_id = ?`, t.ID); err != nil {
				return err
			}
			if err := insertTagLinks(ctx, tx, t); err != nil {
				return err
			}
		}

		if opts.ReplaceSubtasks {
			if err := replaceSubtasks(ctx, tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

// insertTagLinks inserts the task_tags rows for the task's tag set.
func insertTagLinks(ctx context.Context, tx *sql.Tx, t *domain.Task) error {
	for _, tag := range t.Tags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_tags (task_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			t.ID, tag.ID, formatTime(t.UpdatedAt),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// replaceSubtasks diffs the stored subtask set against t.Subtasks by
// name: matching names are updated in place with their IDs preserved,
// new names are inserted, and names no longer submitted are deleted.
func replaceSubtasks(ctx context.Context, tx *sql.Tx, t *domain.Task) error {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM subtasks WHERE task_id = ?`, t.ID)
	if err != nil {
		return err
	}
	existing := make(map[string]string) // name -> id
	for rows.Next() {
		var subID, name string
		if err := rows.Scan(&subID, &name); err != nil {
			rows.Close()
			return err
		}
		existing[name] = subID
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, sub := range t.Subtasks {
		sub.TaskID = t.ID
		sub.UserID = t.UserID
		if subID, ok := existing[sub.Name]; ok {
			sub.ID = subID
			delete(existing, sub.Name)
			_, err := tx.ExecContext(ctx, `
				UPDATE subtasks SET is_completed = ?, updated_at = ?
				WHERE id = ?`,
				sub.IsCompleted, formatTime(t.UpdatedAt), subID,
			)
			if err != nil {
				return err
			}
			continue
		}

		if sub.ID == "" {
			sub.ID, err = id.Generate(id.PrefixSubtask)
			if err != nil {
				return err
			}
		}
		if sub.CreatedAt.IsZero() {
			sub.CreatedAt = t.UpdatedAt
			sub.UpdatedAt = t.UpdatedAt
		}
		if err := insertSubtask(ctx, tx, sub); err != nil {
			return err
		}
	}

	// Whatever was not re-submitted goes away.
	for _, subID := range existing {
		if _, err := tx.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, subID); err != nil {
			return err
		}
	}
	return nil
}

// SetTaskCompleted flips a task's completion flag within the user's scope.
func (s *Store) SetTaskCompleted(ctx context.Context, userID, taskID string, completed bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET is_completed = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`,
		completed, formatTime(time.Now()), userID, taskID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("task not found")
	}
	return nil
}

// DeleteTask removes a task within the user's scope. Subtasks and tag
// associations cascade.
func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, taskID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage("task not found")
	}
	return nil
}

// DeleteCompletedTasks removes all of the user's completed tasks.
func (s *Store) DeleteCompletedTasks(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = ? AND is_completed = 1`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
