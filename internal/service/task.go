package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	domainerrors "github.com/taskdeckapp/taskdeck-server/internal/errors"
	"github.com/taskdeckapp/taskdeck-server/internal/id"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
	"github.com/taskdeckapp/taskdeck-server/internal/util"
)

// TaskService manages tasks, their subtasks, and the composed views
// (flat list, grouped home view, per-day calendar).
type TaskService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(store store.Store, logger *slog.Logger) *TaskService {
	return &TaskService{store: store, logger: logger}
}

// SubtaskInput is one submitted subtask line.
type SubtaskInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	IsCompleted bool   `json:"is_completed"`
}

// CreateTaskRequest contains the data for a new task. Category carries
// the category slug; Tags carry tag names. Both must already exist for
// the user.
type CreateTaskRequest struct {
	Category    string         `json:"category" validate:"required"`
	Name        string         `json:"name" validate:"required,max=200"`
	Description string         `json:"description,omitempty" validate:"max=2000"`
	Date        string         `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Tags        []string       `json:"tags,omitempty"`
	Subtasks    []SubtaskInput `json:"subtasks,omitempty" validate:"dive"`
}

// UpdateTaskRequest contains the editable task fields. Nil fields stay
// unchanged; a set Date of "" clears the date. Submitting Subtasks
// replaces the whole set, matched by name so retained lines keep their
// identity.
type UpdateTaskRequest struct {
	Category    *string         `json:"category,omitempty"`
	Name        *string         `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Date        *string         `json:"date,omitempty"`
	IsCompleted *bool           `json:"is_completed,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	Subtasks    *[]SubtaskInput `json:"subtasks,omitempty" validate:"omitempty,dive"`
}

// List returns one page of the user's tasks matching the criteria, plus
// the total match count.
func (s *TaskService) List(ctx context.Context, userID string, criteria store.TaskCriteria) ([]*domain.Task, int, error) {
	tasks, total, err := s.store.ListTasks(ctx, userID, criteria)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Grouped returns the home view: the user's categories with their
// matching tasks nested inside. Criteria narrow the tasks within each
// group; category slugs narrow which groups appear at all. Groups with
// no matching tasks are dropped.
func (s *TaskService) Grouped(ctx context.Context, userID string, criteria store.TaskCriteria) ([]*domain.CategoryGroup, error) {
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	// The view nests everything, so fetch all matches in one go.
	criteria.Page = store.Page{}
	tasks, _, err := s.store.ListTasks(ctx, userID, criteria)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	byCategory := make(map[string][]*domain.Task)
	for _, t := range tasks {
		byCategory[t.CategoryID] = append(byCategory[t.CategoryID], t)
	}

	groups := []*domain.CategoryGroup{}
	for _, c := range categories {
		children := byCategory[c.ID]
		if len(children) == 0 {
			continue
		}
		groups = append(groups, &domain.CategoryGroup{
			Category: c,
			Tasks:    children,
		})
	}
	return groups, nil
}

// ForDay returns the calendar view: every task dated on the given day.
// A zero day defaults to today.
func (s *TaskService) ForDay(ctx context.Context, userID string, day time.Time) ([]*domain.Task, error) {
	if day.IsZero() {
		day = time.Now()
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	tasks, _, err := s.store.ListTasks(ctx, userID, store.TaskCriteria{Date: &day})
	if err != nil {
		return nil, fmt.Errorf("list tasks for day: %w", err)
	}
	return tasks, nil
}

// Get retrieves one task by ID within the user's scope.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("task not found")
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// GetBySlug retrieves one task by slug within the user's scope.
func (s *TaskService) GetBySlug(ctx context.Context, userID, slug string) (*domain.Task, error) {
	task, err := s.store.GetTaskBySlug(ctx, userID, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("task not found")
		}
		return nil, fmt.Errorf("get task by slug: %w", err)
	}
	return task, nil
}

// Create adds a task with its tags and subtasks. The slug is derived
// from the name and the owner's username, and stays fixed afterwards.
func (s *TaskService) Create(ctx context.Context, user *domain.User, req CreateTaskRequest) (*domain.Task, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.store.GetCategoryBySlug(ctx, user.ID, req.Category)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.FieldViolation("category", "unknown category")
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	tags, err := s.resolveTags(ctx, user.ID, req.Tags)
	if err != nil {
		return nil, err
	}

	subtasks, err := buildSubtasks(req.Subtasks)
	if err != nil {
		return nil, err
	}

	slug := util.OwnedSlug(req.Name, user.Username)
	if slug == "" {
		return nil, domainerrors.FieldViolation("name", "must contain at least one letter or digit")
	}

	date, err := parseTaskDate(req.Date)
	if err != nil {
		return nil, err
	}

	taskID, err := id.Generate(id.PrefixTask)
	if err != nil {
		return nil, fmt.Errorf("generate task ID: %w", err)
	}

	now := time.Now()
	task := &domain.Task{
		ID:          taskID,
		UserID:      user.ID,
		CategoryID:  category.ID,
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Date:        date,
		Tags:        tags,
		Subtasks:    subtasks,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTask(ctx, task); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("a task with this name already exists")
		}
		return nil, fmt.Errorf("create task: %w", err)
	}
	task.Category = category

	return s.Get(ctx, user.ID, task.ID)
}

// Update applies the provided fields to a task. Renaming keeps the
// slug. Submitted tag and subtask sets replace the stored ones; the
// subtask replacement is atomic and matches by name so kept lines keep
// their IDs and completion history.
func (s *TaskService) Update(ctx context.Context, user *domain.User, taskID string, req UpdateTaskRequest) (*domain.Task, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		category, err := s.store.GetCategoryBySlug(ctx, user.ID, *req.Category)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domainerrors.FieldViolation("category", "unknown category")
			}
			return nil, fmt.Errorf("resolve category: %w", err)
		}
		task.CategoryID = category.ID
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, domainerrors.FieldViolation("name", "is required")
		}
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Date != nil {
		date, err := parseTaskDate(*req.Date)
		if err != nil {
			return nil, err
		}
		task.Date = date
	}
	if req.IsCompleted != nil {
		task.IsCompleted = *req.IsCompleted
	}

	opts := store.UpdateTaskOptions{}
	if req.Tags != nil {
		tags, err := s.resolveTags(ctx, user.ID, *req.Tags)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
		opts.ReplaceTags = true
	}
	if req.Subtasks != nil {
		subtasks, err := buildSubtasks(*req.Subtasks)
		if err != nil {
			return nil, err
		}
		task.Subtasks = subtasks
		opts.ReplaceSubtasks = true
	}

	task.Touch()
	if err := s.store.UpdateTask(ctx, task, opts); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("task not found")
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	return s.Get(ctx, user.ID, taskID)
}

// Complete flips a task's completion flag.
func (s *TaskService) Complete(ctx context.Context, userID, taskID string, completed bool) error {
	if err := s.store.SetTaskCompleted(ctx, userID, taskID, completed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("task not found")
		}
		return fmt.Errorf("set task completed: %w", err)
	}
	return nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.store.DeleteTask(ctx, userID, taskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("task not found")
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteCompleted removes every completed task and reports how many
// went away.
func (s *TaskService) DeleteCompleted(ctx context.Context, userID string) (int, error) {
	n, err := s.store.DeleteCompletedTasks(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", err)
	}

	if s.logger != nil && n > 0 {
		s.logger.Info("Completed tasks cleared", "user_id", userID, "count", n)
	}
	return n, nil
}

// AddSubtask appends one subtask to a task. Ownership is derived from
// the parent, never taken from the request.
func (s *TaskService) AddSubtask(ctx context.Context, userID, taskID string, input SubtaskInput) (*domain.Subtask, error) {
	if err := validate.Validate(input); err != nil {
		return nil, err
	}

	task, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	for _, existing := range task.Subtasks {
		if existing.Name == input.Name {
			return nil, domainerrors.FieldViolation("name", "a subtask with this name already exists")
		}
	}

	subtaskID, err := id.Generate(id.PrefixSubtask)
	if err != nil {
		return nil, fmt.Errorf("generate subtask ID: %w", err)
	}

	now := time.Now()
	sub := &domain.Subtask{
		ID:          subtaskID,
		TaskID:      task.ID,
		UserID:      task.UserID,
		Name:        input.Name,
		IsCompleted: input.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateSubtask(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	return sub, nil
}

// CompleteSubtask flips one subtask's completion flag.
func (s *TaskService) CompleteSubtask(ctx context.Context, userID, subtaskID string, completed bool) error {
	if err := s.store.SetSubtaskCompleted(ctx, userID, subtaskID, completed); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("subtask not found")
		}
		return fmt.Errorf("set subtask completed: %w", err)
	}
	return nil
}

// DeleteSubtask removes one subtask.
func (s *TaskService) DeleteSubtask(ctx context.Context, userID, subtaskID string) error {
	if err := s.store.DeleteSubtask(ctx, userID, subtaskID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("subtask not found")
		}
		return fmt.Errorf("delete subtask: %w", err)
	}
	return nil
}

// resolveTags maps tag names to the user's stored tags. Duplicate names
// and names the user doesn't own are rejected; tags are never created
// implicitly here.
func (s *TaskService) resolveTags(ctx context.Context, userID string, names []string) ([]*domain.Tag, error) {
	if len(names) == 0 {
		return []*domain.Tag{}, nil
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, domainerrors.FieldViolation("tags", fmt.Sprintf("duplicate tag %q", name))
		}
		seen[name] = true
	}

	tags, err := s.store.GetTagsByNames(ctx, userID, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	found := make(map[string]bool, len(tags))
	for _, tag := range tags {
		found[tag.Name] = true
	}
	for _, name := range names {
		if !found[name] {
			return nil, domainerrors.FieldViolation("tags", fmt.Sprintf("unknown tag %q", name))
		}
	}
	return tags, nil
}

// buildSubtasks turns submitted subtask lines into domain values,
// rejecting duplicate names since names are the replacement identity.
func buildSubtasks(inputs []SubtaskInput) ([]*domain.Subtask, error) {
	subtasks := make([]*domain.Subtask, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		if seen[input.Name] {
			return nil, domainerrors.FieldViolation("subtasks", fmt.Sprintf("duplicate subtask %q", input.Name))
		}
		seen[input.Name] = true
		subtasks = append(subtasks, &domain.Subtask{
			Name:        input.Name,
			IsCompleted: input.IsCompleted,
		})
	}
	return subtasks, nil
}

// parseTaskDate parses an optional YYYY-MM-DD value; "" clears the date.
func parseTaskDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil, domainerrors.FieldViolation("date", "must be a valid date in YYYY-MM-DD format")
	}
	return &d, nil
}
