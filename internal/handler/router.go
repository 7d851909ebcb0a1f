package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marcus/good-drawer/internal/config"
	"github.com/marcus/good-drawer/internal/handler/draw"
	"github.com/marcus/good-drawer/internal/handler/models"
	middlewarePkg "github.com/marcus/good-drawer/internal/middleware"
	"github.com/marcus/good-drawer/internal/service/engine"
	"github.com/marcus/good-drawer/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(engineSvc *engine.Service, drawCfg config.DrawConfig, static fs.FS) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	drawHandler := draw.New(engineSvc, drawCfg)
	drawHandler.RegisterRoutes(r)

	modelsHandler := models.New(engineSvc)

	r.Route("/api", func(api chi.Router) {
		// Register model discovery routes
		modelsHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	// Drawing page and assets
	r.Handle("/*", http.FileServer(http.FS(static)))

	return r
}
