package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
	domainerrors "github.com/taskdeckapp/taskdeck-server/internal/errors"
	"github.com/taskdeckapp/taskdeck-server/internal/service"
	"github.com/taskdeckapp/taskdeck-server/internal/store"
)

func (s *Server) registerTaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTasks",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks",
		Summary:     "List tasks",
		Description: "Returns a filtered, paginated flat list of the current user's tasks",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTasks)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTasksGrouped",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/grouped",
		Summary:     "Grouped home view",
		Description: "Returns categories with their matching tasks nested; empty groups are dropped",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTasksGrouped)

	huma.Register(s.api, huma.Operation{
		OperationID: "calendarDay",
		Method:      http.MethodGet,
		Path:        "/api/v1/calendar/day",
		Summary:     "Calendar day view",
		Description: "Returns every task dated on the given day, defaulting to today",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCalendarDay)

	huma.Register(s.api, huma.Operation{
		OperationID: "createTask",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks",
		Summary:     "Create task",
		Description: "Creates a task with its tags and subtasks",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTask",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Get task",
		Description: "Returns a task by ID",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTaskBySlug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tasks/slug/{slug}",
		Summary:     "Get task by slug",
		Description: "Returns a task by its slug",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTaskBySlug)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTask",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Update task",
		Description: "Updates task fields; submitted tag and subtask sets replace the stored ones",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeTask",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/{id}/complete",
		Summary:     "Complete task",
		Description: "Sets or clears a task's completion flag",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCompleteTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTask",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/{id}",
		Summary:     "Delete task",
		Description: "Deletes a task and its subtasks",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteTask)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCompletedTasks",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tasks/completed",
		Summary:     "Delete completed tasks",
		Description: "Deletes every completed task for the current user",
		Tags:        []string{"Tasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteCompletedTasks)
}

// === DTOs ===

// TaskFilterInput carries the shared task list filter parameters.
type TaskFilterInput struct {
	Authorization string   `header:"Authorization"`
	Date          string   `query:"date" doc:"Exact due date, YYYY-MM-DD"`
	DateAfter     string   `query:"date_after" doc:"Inclusive lower due date bound, YYYY-MM-DD"`
	DateBefore    string   `query:"date_before" doc:"Inclusive upper due date bound, YYYY-MM-DD"`
	IsCompleted   *bool    `query:"is_completed" doc:"Filter on completion state"`
	Categories    []string `query:"category" doc:"Category slugs, repeatable"`
	TagNames      []string `query:"tag" doc:"Tag names, repeatable; tasks with any of them match"`
	Search        string   `query:"q" doc:"Case-insensitive substring match on name or description"`
	Ordering      string   `query:"ordering" doc:"category, -category, date, -date, is_completed, -is_completed"`
}

// ListTasksInput adds pagination to the shared filters.
type ListTasksInput struct {
	TaskFilterInput
	Page int `query:"page" doc:"1-based page number" minimum:"0"`
	Size int `query:"size" doc:"Page size, default 10, max 20" minimum:"0"`
}

// TaskListResponse is the paginated list envelope.
type TaskListResponse struct {
	Count    int            `json:"count" doc:"Total number of matches across all pages"`
	Next     *string        `json:"next" doc:"URL of the next page, null on the last page"`
	Previous *string        `json:"previous" doc:"URL of the previous page, null on the first page"`
	Results  []TaskResponse `json:"results" doc:"One page of tasks"`
}

// TaskListOutput wraps the paginated list for Huma.
type TaskListOutput struct {
	Body TaskListResponse
}

// TaskGroupResponse is one category with its matching tasks.
type TaskGroupResponse struct {
	Category CategoryResponse `json:"category" doc:"The group's category"`
	Tasks    []TaskResponse   `json:"tasks" doc:"Tasks matching the filters"`
}

// GroupedTasksOutput wraps the grouped home view for Huma.
type GroupedTasksOutput struct {
	Body struct {
		Groups []TaskGroupResponse `json:"groups" doc:"Non-empty category groups, ordered by slug"`
	}
}

// CalendarDayInput selects the day for the calendar view.
type CalendarDayInput struct {
	Authorization string `header:"Authorization"`
	Date          string `query:"date" doc:"Day to show, YYYY-MM-DD; defaults to today"`
}

// CalendarDayOutput wraps the calendar view for Huma.
type CalendarDayOutput struct {
	Body struct {
		Date  string         `json:"date" doc:"The shown day, YYYY-MM-DD"`
		Tasks []TaskResponse `json:"tasks" doc:"Tasks dated on that day"`
	}
}

// SubtaskBody is one submitted subtask line.
type SubtaskBody struct {
	Name        string `json:"name" doc:"Subtask name, unique within the task"`
	IsCompleted bool   `json:"is_completed,omitempty" doc:"Completion flag"`
}

// CreateTaskBody is the request body for creating a task.
type CreateTaskBody struct {
	Category    string        `json:"category" doc:"Category slug"`
	Name        string        `json:"name" doc:"Task name"`
	Description string        `json:"description,omitempty" doc:"Free-form description"`
	Date        string        `json:"date,omitempty" doc:"Due date, YYYY-MM-DD"`
	Tags        []string      `json:"tags,omitempty" doc:"Existing tag names"`
	Subtasks    []SubtaskBody `json:"subtasks,omitempty" doc:"Initial subtasks"`
}

// CreateTaskInput wraps the create request for Huma.
type CreateTaskInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateTaskBody
}

// UpdateTaskBody is the request body for updating a task. Absent fields
// stay unchanged; a date of "" clears the date.
type UpdateTaskBody struct {
	Category    *string        `json:"category,omitempty" doc:"New category slug"`
	Name        *string        `json:"name,omitempty" doc:"New name; the slug never changes"`
	Description *string        `json:"description,omitempty" doc:"New description"`
	Date        *string        `json:"date,omitempty" doc:"New due date, YYYY-MM-DD, or empty to clear"`
	IsCompleted *bool          `json:"is_completed,omitempty" doc:"Completion flag"`
	Tags        *[]string      `json:"tags,omitempty" doc:"Replacement tag name set"`
	Subtasks    *[]SubtaskBody `json:"subtasks,omitempty" doc:"Replacement subtask set, matched by name"`
}

// UpdateTaskInput wraps the update request for Huma.
type UpdateTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
	Body          UpdateTaskBody
}

// TaskByIDInput addresses one task.
type TaskByIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
}

// TaskBySlugInput addresses one task by slug.
type TaskBySlugInput struct {
	Authorization string `header:"Authorization"`
	Slug          string `path:"slug" doc:"Task slug"`
}

// CompleteTaskInput wraps the completion toggle for Huma.
type CompleteTaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Task ID"`
	Body          struct {
		IsCompleted bool `json:"is_completed" doc:"Desired completion state"`
	}
}

// TaskOutput wraps one task for Huma.
type TaskOutput struct {
	Body TaskResponse
}

// DeletedCountOutput reports how many rows a bulk delete removed.
type DeletedCountOutput struct {
	Body struct {
		Deleted int `json:"deleted" doc:"Number of tasks removed"`
	}
}

// === Handlers ===

func (s *Server) handleListTasks(ctx context.Context, input *ListTasksInput) (*TaskListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	criteria, err := buildCriteria(&input.TaskFilterInput)
	if err != nil {
		return nil, err
	}
	criteria.Page = store.Page{Number: input.Page, Size: input.Size}
	if criteria.Page.Size == 0 {
		criteria.Page.Size = store.DefaultPageSize
	}
	criteria.Page.Normalize()

	tasks, total, err := s.services.Tasks.List(ctx, user.ID, criteria)
	if err != nil {
		return nil, err
	}

	body := TaskListResponse{
		Count:    total,
		Results:  mapTasks(tasks, user.Username),
		Next:     pageURL(input, criteria.Page, total, +1),
		Previous: pageURL(input, criteria.Page, total, -1),
	}
	return &TaskListOutput{Body: body}, nil
}

func (s *Server) handleListTasksGrouped(ctx context.Context, input *TaskFilterInput) (*GroupedTasksOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	criteria, err := buildCriteria(input)
	if err != nil {
		return nil, err
	}

	groups, err := s.services.Tasks.Grouped(ctx, user.ID, criteria)
	if err != nil {
		return nil, err
	}

	out := &GroupedTasksOutput{}
	out.Body.Groups = make([]TaskGroupResponse, len(groups))
	for i, g := range groups {
		out.Body.Groups[i] = TaskGroupResponse{
			Category: mapCategory(g.Category),
			Tasks:    mapTasks(g.Tasks, user.Username),
		}
	}
	return out, nil
}

func (s *Server) handleCalendarDay(ctx context.Context, input *CalendarDayInput) (*CalendarDayOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var day time.Time
	if input.Date != "" {
		day, err = time.Parse(domain.DateLayout, input.Date)
		if err != nil {
			return nil, domainerrors.FieldViolation("date", "must be a valid date in YYYY-MM-DD format")
		}
	} else {
		day = time.Now()
	}

	tasks, err := s.services.Tasks.ForDay(ctx, user.ID, day)
	if err != nil {
		return nil, err
	}

	out := &CalendarDayOutput{}
	out.Body.Date = day.Format(domain.DateLayout)
	out.Body.Tasks = mapTasks(tasks, user.Username)
	return out, nil
}

func (s *Server) handleCreateTask(ctx context.Context, input *CreateTaskInput) (*TaskOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.Create(ctx, user, service.CreateTaskRequest{
		Category:    input.Body.Category,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Date:        input.Body.Date,
		Tags:        input.Body.Tags,
		Subtasks:    mapSubtaskInputs(input.Body.Subtasks),
	})
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: mapTask(task, user.Username)}, nil
}

func (s *Server) handleGetTask(ctx context.Context, input *TaskByIDInput) (*TaskOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: mapTask(task, user.Username)}, nil
}

func (s *Server) handleGetTaskBySlug(ctx context.Context, input *TaskBySlugInput) (*TaskOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	task, err := s.services.Tasks.GetBySlug(ctx, user.ID, input.Slug)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: mapTask(task, user.Username)}, nil
}

func (s *Server) handleUpdateTask(ctx context.Context, input *UpdateTaskInput) (*TaskOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	req := service.UpdateTaskRequest{
		Category:    input.Body.Category,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Date:        input.Body.Date,
		IsCompleted: input.Body.IsCompleted,
		Tags:        input.Body.Tags,
	}
	if input.Body.Subtasks != nil {
		subtasks := mapSubtaskInputs(*input.Body.Subtasks)
		req.Subtasks = &subtasks
	}

	task, err := s.services.Tasks.Update(ctx, user, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &TaskOutput{Body: mapTask(task, user.Username)}, nil
}

func (s *Server) handleCompleteTask(ctx context.Context, input *CompleteTaskInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tasks.Complete(ctx, user.ID, input.ID, input.Body.IsCompleted); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Task updated"}}, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, input *TaskByIDInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tasks.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Task deleted"}}, nil
}

func (s *Server) handleDeleteCompletedTasks(ctx context.Context, input *AuthedInput) (*DeletedCountOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	n, err := s.services.Tasks.DeleteCompleted(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	out := &DeletedCountOutput{}
	out.Body.Deleted = n
	return out, nil
}

// === Helpers ===

// buildCriteria translates the filter query parameters into a store
// criteria bag, rejecting malformed dates and unknown sort keys.
func buildCriteria(input *TaskFilterInput) (store.TaskCriteria, error) {
	criteria := store.TaskCriteria{
		CategorySlugs: input.Categories,
		TagNames:      input.TagNames,
		IsCompleted:   input.IsCompleted,
		Search:        input.Search,
	}

	var err error
	if criteria.Date, err = parseFilterDate(input.Date, "date"); err != nil {
		return criteria, err
	}
	if criteria.DateAfter, err = parseFilterDate(input.DateAfter, "date_after"); err != nil {
		return criteria, err
	}
	if criteria.DateBefore, err = parseFilterDate(input.DateBefore, "date_before"); err != nil {
		return criteria, err
	}

	criteria.Sort, err = store.ParseSortKey(input.Ordering)
	if err != nil {
		return criteria, domainerrors.FieldViolation("ordering", "must be one of: category, -category, date, -date, is_completed, -is_completed")
	}
	return criteria, nil
}

func parseFilterDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return nil, domainerrors.FieldViolation(field, "must be a valid date in YYYY-MM-DD format")
	}
	return &d, nil
}

// pageURL builds the next or previous page URL for the list envelope,
// or nil when there is no such page.
func pageURL(input *ListTasksInput, page store.Page, total, delta int) *string {
	target := page.Number + delta
	if delta > 0 && page.Number*page.Size >= total {
		return nil
	}
	// Past the end of the result set, point back at the last populated
	// page instead of the adjacent empty one.
	if last := (total + page.Size - 1) / page.Size; target > last {
		target = last
	}
	if target < 1 {
		return nil
	}

	q := url.Values{}
	setIf := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	setIf("date", input.Date)
	setIf("date_after", input.DateAfter)
	setIf("date_before", input.DateBefore)
	setIf("q", input.Search)
	setIf("ordering", input.Ordering)
	if input.IsCompleted != nil {
		q.Set("is_completed", strconv.FormatBool(*input.IsCompleted))
	}
	for _, c := range input.Categories {
		q.Add("category", c)
	}
	for _, t := range input.TagNames {
		q.Add("tag", t)
	}
	q.Set("page", strconv.Itoa(target))
	q.Set("size", strconv.Itoa(page.Size))

	u := fmt.Sprintf("/api/v1/tasks?%s", q.Encode())
	return &u
}

func mapSubtaskInputs(bodies []SubtaskBody) []service.SubtaskInput {
	subtasks := make([]service.SubtaskInput, len(bodies))
	for i, b := range bodies {
		subtasks[i] = service.SubtaskInput{
			Name:        b.Name,
			IsCompleted: b.IsCompleted,
		}
	}
	return subtasks
}
