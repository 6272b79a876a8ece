package api

import (
	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

// Services bundles the application services the handlers call into.
type Services struct {
	Users      *service.UserService
	Sessions   *service.SessionService
	Categories *service.CategoryService
	Tags       *service.TagService
	Tasks      *service.TaskService
}
