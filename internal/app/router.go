package app

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/K-nass/task-management/internal/auth"
	"github.com/K-nass/task-management/internal/observability"
	"github.com/K-nass/task-management/internal/platform/httpx"
	"github.com/K-nass/task-management/internal/tasks"
	"github.com/K-nass/task-management/web"
)

// ReadinessCheck reports whether a backing service is reachable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	AuthHandler  *auth.Handler
	TasksHandler *tasks.Handler
	Guard        *auth.Guard
	Metrics      *observability.Metrics
	Readiness    []ReadinessCheck
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(logger, params.Readiness))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	api := func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/tasks", func(r chi.Router) {
			r.Use(params.Guard.Require)
			params.TasksHandler.MountRoutes(r)
		})
	}
	if prefix := apiPrefix(params.Config); prefix != "" {
		r.Route(prefix, api)
	} else {
		r.Group(api)
	}

	if static := staticFS(logger, params.Config); static != nil {
		r.Handle("/*", spaHandler(static))
	}

	return r
}

func apiPrefix(cfg *Config) string {
	if cfg == nil {
		return "/api"
	}
	return cfg.AppAPIPrefix
}

func readinessHandler(logger *slog.Logger, checks []ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := make([]string, 0)
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.Warn("readiness check failed", slog.String("check", c.Name), slog.Any("error", err))
				failed = append(failed, c.Name)
			}
		}
		if len(failed) > 0 {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// staticFS picks the front-end build directory when configured and the
// embedded placeholder otherwise.
func staticFS(logger *slog.Logger, cfg *Config) fs.FS {
	if cfg != nil && cfg.AppStaticDir != "" {
		if info, err := os.Stat(cfg.AppStaticDir); err != nil || !info.IsDir() {
			logger.Error("static dir unavailable, serving placeholder", slog.String("dir", cfg.AppStaticDir), slog.Any("error", err))
		} else {
			return os.DirFS(cfg.AppStaticDir)
		}
	}
	sub, err := fs.Sub(web.Static, "static")
	if err != nil {
		logger.Error("create static sub filesystem", slog.Any("error", err))
		return nil
	}
	return sub
}
