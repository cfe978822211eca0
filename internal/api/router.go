package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/pinpass/internal/api/handlers"
	"github.com/isdelr/pinpass/internal/auth"
	"github.com/isdelr/pinpass/internal/notify"
	"github.com/isdelr/pinpass/internal/services"
	"github.com/isdelr/pinpass/internal/session"
	"github.com/isdelr/pinpass/internal/views"
)

// Dependencies are the handles the router wires into its handlers.
type Dependencies struct {
	Sessions       *session.Manager
	Users          services.UserServiceProvider
	Events         services.EventServiceProvider
	Dispatcher     notify.Dispatcher
	Views          *views.Renderer
	HealthChecks   map[string]handlers.HealthCheck
	AllowedOrigins []string
	SenderName     string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(deps.Users, deps.Events, deps.Views)
	recoveryHandler := handlers.NewRecoveryHandler(deps.Users, deps.Events, deps.Dispatcher, deps.Views, deps.SenderName)
	pageHandler := handlers.NewPageHandler(deps.Views)
	debugHandler := handlers.NewDebugHandler(deps.Users)
	eventHandler := handlers.NewEventHandler(deps.Events)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks)

	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/terms", pageHandler.Terms)

	// Debug listings
	r.Get("/test-db", debugHandler.ListUsers)
	r.Get("/events", eventHandler.GetRecent)

	r.Group(func(r chi.Router) {
		r.Use(deps.Sessions.Middleware)

		r.Get("/", accountHandler.SignupForm)
		r.Post("/", accountHandler.Signup)
		r.Get(handlers.SignInPath, accountHandler.SignInForm)
		r.Post(handlers.SignInPath, accountHandler.SignIn)
		r.Get("/logout", accountHandler.Logout)

		r.Get("/recover_pin", recoveryHandler.Form)
		r.Post("/recover-pin", recoveryHandler.Recover)

		r.With(auth.RequireUser(handlers.SignInPath)).Get(handlers.DashboardPath, accountHandler.Dashboard)
	})

	return r
}
