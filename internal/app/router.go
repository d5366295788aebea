package app

import (
	"taskPlanner/internal/config"
	"taskPlanner/internal/handlers"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Authenticator - вход, выход и проверка сессии
type Authenticator interface {
	handlers.AuthService
	middleware.SessionResolver
}

type RouterDeps struct {
	Tasks          handlers.TaskService
	Auth           Authenticator
	Cookie         handlers.CookieConfig
	AllowedOrigins []string
	RateLimit      config.RateLimitConfig
	Metrics        *telemetry.HTTPMetrics
}

func NewRouter(deps RouterDeps) *chi.Mux {
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Cookie)
	requireSession := middleware.RequireSession(deps.Auth, deps.Cookie.Name)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.RateLimit.Enabled {
		r.Use(middleware.RateLimit(deps.RateLimit.RequestsPerMinute, deps.RateLimit.Burst))
	}

	r.Get("/health", taskHandler.HealthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/signin", authHandler.SignIn)                        // GET /auth/signin
		r.Get("/callback/google", authHandler.Callback)             // GET /auth/callback/google
		r.Post("/signout", authHandler.SignOut)                     // POST /auth/signout
		r.With(requireSession).Get("/session", authHandler.Session) // GET /auth/session
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(requireSession)

		r.Get("/", taskHandler.ListTasks)   // GET /tasks
		r.Post("/", taskHandler.CreateTask) // POST /tasks

		r.Patch("/{id}", taskHandler.UpdateTask)  // PATCH /tasks/{id}
		r.Delete("/{id}", taskHandler.DeleteTask) // DELETE /tasks/{id}
	})

	return r
}
