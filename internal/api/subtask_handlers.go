package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

func (s *Server) registerSubtaskRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addSubtask",
		Method:      http.MethodPost,
		Path:        "/api/v1/tasks/{id}/subtasks",
		Summary:     "Add subtask",
		Description: "Appends a subtask to an existing task",
		Tags:        []string{"Subtasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddSubtask)

	huma.Register(s.api, huma.Operation{
		OperationID: "completeSubtask",
		Method:      http.MethodPost,
		Path:        "/api/v1/subtasks/{id}/complete",
		Summary:     "Complete subtask",
		Description: "Sets or clears a subtask's completion flag; the parent task is untouched",
		Tags:        []string{"Subtasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCompleteSubtask)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSubtask",
		Method:      http.MethodDelete,
		Path:        "/api/v1/subtasks/{id}",
		Summary:     "Delete subtask",
		Description: "Deletes a single subtask",
		Tags:        []string{"Subtasks"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteSubtask)
}

// AddSubtaskInput wraps a new subtask for Huma.
type AddSubtaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Parent task ID"`
	Body          SubtaskBody
}

// CompleteSubtaskInput wraps the completion toggle for Huma.
type CompleteSubtaskInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Subtask ID"`
	Body          struct {
		IsCompleted bool `json:"is_completed" doc:"Desired completion state"`
	}
}

// SubtaskByIDInput addresses one subtask.
type SubtaskByIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Subtask ID"`
}

// SubtaskOutput wraps one subtask for Huma.
type SubtaskOutput struct {
	Body SubtaskResponse
}

func (s *Server) handleAddSubtask(ctx context.Context, input *AddSubtaskInput) (*SubtaskOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	subtask, err := s.services.Tasks.AddSubtask(ctx, user.ID, input.ID, service.SubtaskInput{
		Name:        input.Body.Name,
		IsCompleted: input.Body.IsCompleted,
	})
	if err != nil {
		return nil, err
	}
	return &SubtaskOutput{Body: mapSubtask(subtask)}, nil
}

func (s *Server) handleCompleteSubtask(ctx context.Context, input *CompleteSubtaskInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tasks.CompleteSubtask(ctx, user.ID, input.ID, input.Body.IsCompleted); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Subtask updated"}}, nil
}

func (s *Server) handleDeleteSubtask(ctx context.Context, input *SubtaskByIDInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Tasks.DeleteSubtask(ctx, user.ID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Subtask deleted"}}, nil
}
