package api

import (
	"log"
	"net/http"
	"time"

	"kaitlus-backend/internal/config"
	"kaitlus-backend/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDependencies holds all the dependencies required by the router setup,
// primarily handlers and configuration. Nil handlers are skipped with a
// warning: when the database is unreachable at startup the server runs
// without auth/session/admin routes and keeps serving chat replies.
type RouterDependencies struct {
	AuthHandler  *handlers.AuthHandler
	ChatHandler  *handlers.ChatHandlers
	AdminHandler *handlers.AdminHandlers
	Config       *config.Config
}

// NewRouter creates and configures the main Chi router for the application.
func NewRouter(deps RouterDependencies) *chi.Mux {
	r := chi.NewRouter()

	// --- Base Middleware Stack ---
	r.Use(middleware.RequestID)                 // Inject request ID into context
	r.Use(middleware.RealIP)                    // Use X-Forwarded-For or X-Real-IP
	r.Use(middleware.Logger)                    // Log requests
	r.Use(middleware.Recoverer)                 // Recover from panics, return 500
	r.Use(middleware.Timeout(60 * time.Second)) // Set a request timeout

	// --- CORS Configuration ---
	// Adjust AllowedOrigins for your frontend deployment(s)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://*.kaitlus.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// --- Public Routes (No JWT Required) ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.AuthHandler != nil {
		r.Route("/v1/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.HandleRegister)
			r.Post("/login", deps.AuthHandler.HandleLogin)
		})
	} else {
		log.Println("WARN: AuthHandler dependency is nil, skipping /v1/auth routes.")
	}

	// The chat widget is public: visitors talk to the assistant without
	// an account.
	if deps.ChatHandler != nil {
		r.Route("/v1/chat", func(r chi.Router) {
			r.Post("/", deps.ChatHandler.HandleChat)
			r.Post("/sessions", deps.ChatHandler.HandleStartSession)
		})
	} else {
		log.Println("WARN: ChatHandler dependency is nil, skipping /v1/chat routes.")
	}

	// --- Admin Routes (JWT + admin flag required) ---
	if deps.AdminHandler != nil {
		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(JwtAuthMiddleware(deps.Config.JWTSecret))
			r.Use(AdminOnly)

			r.Get("/chats", deps.AdminHandler.HandleListSessions)
			r.Get("/chats/{sessionID}", deps.AdminHandler.HandleGetTranscript)
		})
	} else {
		log.Println("WARN: AdminHandler dependency is nil, skipping /v1/admin routes.")
	}

	return r
}
