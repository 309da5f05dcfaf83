package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/helpdock/helpdock/internal/agent"
	"github.com/helpdock/helpdock/internal/api/handler"
	customMiddleware "github.com/helpdock/helpdock/internal/api/middleware"
	"github.com/helpdock/helpdock/internal/config"
	"github.com/helpdock/helpdock/internal/domain"
	"github.com/helpdock/helpdock/internal/repository/redis"
	"github.com/helpdock/helpdock/internal/service"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case the chat endpoint runs without rate limiting.
func NewRouter(cfg *config.Config, store domain.Store, agents *agent.Router, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.Origins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Initialize services and handlers
	chatService := service.NewChatService(store, agents)

	threadHandler := handler.NewThreadHandler(store, chatService)
	chatHandler := handler.NewChatHandler(chatService)
	attachmentHandler := handler.NewAttachmentHandler(store)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(agents))

		r.Group(func(r chi.Router) {
			if redisClient != nil {
				rateLimiter := redis.NewRateLimiter(
					redisClient,
					cfg.RateLimit.RequestsPerMinute,
					cfg.RateLimit.Burst,
				)
				r.Use(customMiddleware.NewRateLimitMiddleware(rateLimiter).Limit)
			}

			// Starts a new conversation when no thread is given.
			r.Post("/chat", chatHandler.Send)

			r.Route("/threads", func(r chi.Router) {
				r.Get("/", threadHandler.List)
				r.Post("/", threadHandler.Create)

				r.Route("/{threadID}", func(r chi.Router) {
					r.Get("/", threadHandler.Get)
					r.Delete("/", threadHandler.Delete)

					r.Post("/messages", chatHandler.Send)

					r.Route("/items", func(r chi.Router) {
						r.Get("/", threadHandler.ListItems)

						r.Route("/{itemID}", func(r chi.Router) {
							r.Get("/", threadHandler.GetItem)
							r.Delete("/", threadHandler.DeleteItem)
						})
					})
				})
			})

			r.Route("/attachments", func(r chi.Router) {
				r.Post("/", attachmentHandler.Save)

				r.Route("/{attachmentID}", func(r chi.Router) {
					r.Get("/", attachmentHandler.Load)
					r.Delete("/", attachmentHandler.Delete)
				})
			})
		})
	})

	return r
}
