package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/comments"
	"github.com/taskhub/taskhub/internal/gate"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/platform/httpx"
	"github.com/taskhub/taskhub/internal/projects"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
	"github.com/taskhub/taskhub/internal/tasks"
	"github.com/taskhub/taskhub/internal/users"
	"github.com/taskhub/taskhub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Authenticator  auth.Middleware
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics

	AuthHandler       *auth.Handler
	NavigationHandler *gate.Handler
	ProjectsHandler   *projects.Handler
	TasksHandler      *tasks.Handler
	CommentsHandler   *comments.Handler
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, httpx.KindNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, httpx.KindNotFound, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	loginLimit := 0
	if params.Config != nil {
		loginLimit = params.Config.LoginRateLimit
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(params.Authenticator.Authenticate)

		if params.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.With(LoginLimiter(loginLimit)).Post("/login", params.AuthHandler.Login)
				params.AuthHandler.MountRoutes(r)
			})
		}
		if params.NavigationHandler != nil {
			r.Route("/navigation", params.NavigationHandler.MountRoutes)
		}
		if params.ProjectsHandler != nil {
			r.Route("/projects", func(r chi.Router) {
				params.ProjectsHandler.MountRoutes(r)
				if params.TasksHandler != nil {
					r.Route("/{id}/tasks", params.TasksHandler.MountProjectRoutes)
				}
			})
		}
		if params.TasksHandler != nil {
			r.Route("/tasks", func(r chi.Router) {
				params.TasksHandler.MountRoutes(r)
				if params.CommentsHandler != nil {
					r.Route("/{taskID}/comments", params.CommentsHandler.MountTaskRoutes)
				}
			})
		}
		if params.CommentsHandler != nil {
			r.Route("/comments", params.CommentsHandler.MountRoutes)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAdmin())
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
			if params.RolesHandler != nil {
				r.Route("/roles", params.RolesHandler.MountRoutes)
			}
		})
	})

	return r
}
