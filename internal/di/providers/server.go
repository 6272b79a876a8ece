package providers

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/taskdeckapp/taskdeck-server/internal/api"
	"github.com/taskdeckapp/taskdeck-server/internal/auth"
	"github.com/taskdeckapp/taskdeck-server/internal/config"
	"github.com/taskdeckapp/taskdeck-server/internal/logger"
	"github.com/taskdeckapp/taskdeck-server/internal/service"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 30 * time.Second

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer assembles the API server and starts it in the
// background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Users:      do.MustInvoke[*service.UserService](i),
		Sessions:   do.MustInvoke[*service.SessionService](i),
		Categories: do.MustInvoke[*service.CategoryService](i),
		Tags:       do.MustInvoke[*service.TagService](i),
		Tasks:      do.MustInvoke[*service.TaskService](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokenService, log.Logger)

	srv := handler.HTTPServer(":" + cfg.Server.Port)
	srv.ReadTimeout = cfg.Server.ReadTimeout
	srv.WriteTimeout = cfg.Server.WriteTimeout
	srv.IdleTimeout = cfg.Server.IdleTimeout

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
