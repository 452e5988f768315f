package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	core_port "real-estate-marketplace/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers - все обработчики API.
type Handlers struct {
	Listings   *ListingsHandler
	Favorites  *FavoritesHandler
	Moderation *ModerationHandler
}

// RouterOptions - необязательные части цепочки middleware. nil отключает соответствующую часть.
type RouterOptions struct {
	AllowedOrigins []string
	RateLimiter    *RateLimiter
	Metrics        HTTPMetricsRecorder
	MetricsHandler http.Handler
}

// NewRouter собирает chi-роутер со всеми маршрутами сервиса.
func NewRouter(handlers Handlers, opts RouterOptions, baseLogger core_port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Trace-ID", "X-User-ID", "X-User-Role"},
			ExposedHeaders:   []string{"X-Trace-ID"},
			AllowCredentials: true,
			MaxAge:           300, // 5 минут
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimiter != nil {
			r.Use(opts.RateLimiter.Middleware)
		}

		// Публичные маршруты
		r.Get("/listings", handlers.Listings.FindListings)
		r.Get("/listings/{listingID}", handlers.Listings.GetListingDetails)
		r.Post("/listings/{listingID}/inquiries", handlers.Moderation.SubmitInquiry)
		r.Get("/filters/options", handlers.Listings.GetFilterOptions)

		// Маршруты авторизованного пользователя (API Gateway)
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware)

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", handlers.Favorites.GetUserFavorites)
				r.Post("/", handlers.Favorites.AddToFavorites)
				r.Delete("/", handlers.Favorites.ClearFavorites)
				r.Get("/ids", handlers.Favorites.GetFavoriteIDs)
				r.Get("/{listingID}", handlers.Favorites.IsFavorite)
				r.Post("/{listingID}/toggle", handlers.Favorites.ToggleFavorite)
				r.Delete("/{listingID}", handlers.Favorites.RemoveFromFavorites)
			})

			r.Get("/seller/inquiries", handlers.Moderation.GetSellerInquiries)
		})

		// Только для админов
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware, RequireRole(RoleAdmin))

			r.Get("/admin/listings/pending", handlers.Moderation.GetPendingListings)
			r.Post("/admin/listings/{listingID}/moderate", handlers.Moderation.ModerateListing)
		})
	})

	return r
}

// Server - REST API сервер.
type Server struct {
	httpServer *http.Server
	logger     core_port.LoggerPort
}

func NewServer(port string, handler http.Handler, baseLogger core_port.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger.WithFields(core_port.Fields{"component": "rest_server"}),
	}
}

// Start запускает HTTP-сервер и блокируется до его остановки.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
