package rest

import (
	"net/http"

	"castfeed-backend/application/commands/bus"
	querybus "castfeed-backend/application/queries/bus"
	"castfeed-backend/infrastructure/config"
	"castfeed-backend/interfaces/http/rest/handlers"
	"castfeed-backend/interfaces/http/rest/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus: commandBus,
		queryBus:   queryBus,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000", "https://*.castfeed.io"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.cfg))

		contentHandler := handlers.NewContentHandler(rt.commandBus, rt.queryBus, rt.logger)
		commentHandler := handlers.NewCommentHandler(rt.commandBus, rt.queryBus, rt.logger)
		feedHandler := handlers.NewFeedHandler(rt.commandBus, rt.queryBus, rt.logger)

		// Content endpoints
		r.Route("/contents", func(r chi.Router) {
			r.Post("/", contentHandler.CreateContent)
			r.Get("/{contentID}", contentHandler.GetContent)
			r.Put("/{contentID}", contentHandler.UpdateContent)
			r.Delete("/{contentID}", contentHandler.DeleteContent)

			r.Post("/{contentID}/recast", contentHandler.Recast)
			r.Post("/{contentID}/quote", contentHandler.Quote)
			r.Post("/{contentID}/like", contentHandler.Like)
			r.Delete("/{contentID}/like", contentHandler.Unlike)

			r.Get("/{contentID}/revisions", contentHandler.ListRevisions)
			r.Get("/{contentID}/revisions/{seq}", contentHandler.GetRevision)

			r.Post("/{contentID}/comments", commentHandler.Create)
			r.Get("/{contentID}/comments", commentHandler.List)
		})

		// Comment endpoints
		r.Route("/comments", func(r chi.Router) {
			r.Put("/{commentID}", commentHandler.Update)
			r.Delete("/{commentID}", commentHandler.Delete)
			r.Post("/{commentID}/replies", commentHandler.Reply)
			r.Get("/{commentID}/replies", commentHandler.ListReplies)
			r.Post("/{commentID}/like", commentHandler.Like)
			r.Delete("/{commentID}/like", commentHandler.Unlike)
		})

		// User endpoints
		r.Route("/users", func(r chi.Router) {
			r.Get("/{userID}/contents", contentHandler.ListByAuthor)
			r.Post("/{userID}/follow", feedHandler.Follow)
			r.Delete("/{userID}/follow", feedHandler.Unfollow)
		})

		// Feed endpoints
		r.Route("/feed", func(r chi.Router) {
			r.Get("/", feedHandler.GetFeed)
			r.Post("/{itemID}/seen", feedHandler.MarkSeen)
			r.Post("/{itemID}/called", feedHandler.MarkCalled)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
