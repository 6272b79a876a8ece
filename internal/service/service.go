// Package service implements the application use cases on top of the
// store. Handlers stay thin; everything user-facing lives here.
package service

import (
	"github.com/taskdeckapp/taskdeck-server/internal/validation"
)

// validate is the shared request validator for all services.
var validate = validation.New()
