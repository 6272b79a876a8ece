package api

import (
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
)

// === Shared response bodies ===

// MessageResponse is a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// UserResponse contains user data in API responses. The password hash
// never leaves the server.
type UserResponse struct {
	ID        string    `json:"id" doc:"User ID"`
	Email     string    `json:"email" doc:"Login email"`
	Username  string    `json:"username" doc:"Unique username"`
	FirstName string    `json:"first_name,omitempty" doc:"First name"`
	LastName  string    `json:"last_name,omitempty" doc:"Last name"`
	Phone     string    `json:"phone,omitempty" doc:"Phone number"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// CategoryResponse contains category data in API responses.
type CategoryResponse struct {
	ID        string    `json:"id" doc:"Category ID"`
	Name      string    `json:"name" doc:"Category name"`
	Slug      string    `json:"slug" doc:"URL-safe slug, fixed at creation"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Name      string    `json:"name" doc:"Tag name"`
	Slug      string    `json:"slug" doc:"URL-safe slug, fixed at creation"`
	Color     string    `json:"color,omitempty" doc:"Display color"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

// SubtaskResponse contains subtask data nested in a task.
type SubtaskResponse struct {
	ID          string `json:"id" doc:"Subtask ID"`
	Name        string `json:"name" doc:"Subtask name"`
	IsCompleted bool   `json:"is_completed" doc:"Completion flag"`
}

// TaskResponse contains task data in API responses. Category carries
// the category slug and User the owner's username.
type TaskResponse struct {
	ID          string            `json:"id" doc:"Task ID"`
	Category    string            `json:"category" doc:"Category slug"`
	Name        string            `json:"name" doc:"Task name"`
	Slug        string            `json:"slug" doc:"URL-safe slug, fixed at creation"`
	Description string            `json:"description,omitempty" doc:"Free-form description"`
	Date        *string           `json:"date" doc:"Due date as YYYY-MM-DD, null when unscheduled"`
	IsCompleted bool              `json:"is_completed" doc:"Completion flag"`
	User        string            `json:"user" doc:"Owner's username"`
	Tags        []string          `json:"tags" doc:"Tag names"`
	Subtasks    []SubtaskResponse `json:"subtasks" doc:"Nested subtasks"`
	CreatedAt   time.Time         `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time         `json:"updated_at" doc:"Last update time"`
}

// === Mappers ===

func mapUser(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func mapCategory(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func mapTag(t *domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Color:     t.Color,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func mapSubtask(sub *domain.Subtask) SubtaskResponse {
	return SubtaskResponse{
		ID:          sub.ID,
		Name:        sub.Name,
		IsCompleted: sub.IsCompleted,
	}
}

func mapTask(t *domain.Task, username string) TaskResponse {
	var date *string
	if t.Date != nil {
		formatted := t.DateString()
		date = &formatted
	}

	categorySlug := ""
	if t.Category != nil {
		categorySlug = t.Category.Slug
	}

	subtasks := make([]SubtaskResponse, len(t.Subtasks))
	for i, sub := range t.Subtasks {
		subtasks[i] = mapSubtask(sub)
	}

	tags := t.TagNames()
	if tags == nil {
		tags = []string{}
	}

	return TaskResponse{
		ID:          t.ID,
		Category:    categorySlug,
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Date:        date,
		IsCompleted: t.IsCompleted,
		User:        username,
		Tags:        tags,
		Subtasks:    subtasks,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapTasks(tasks []*domain.Task, username string) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		out[i] = mapTask(t, username)
	}
	return out
}
