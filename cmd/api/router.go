package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modernhn/modernhn/internal/auth"
	"github.com/modernhn/modernhn/internal/config"
	"github.com/modernhn/modernhn/internal/handlers"
	"github.com/modernhn/modernhn/internal/middleware"
	"github.com/modernhn/modernhn/internal/repo"
	"github.com/modernhn/modernhn/internal/uploads"
)

// newRouter wires repos, handlers, and the middleware chain. Split from main
// so integration tests can build the full router over a mock DB.
func newRouter(database *sql.DB, store *uploads.Store, cfg config.Config) *chi.Mux {
	userRepo := repo.NewUserRepo(database)
	favoriteRepo := repo.NewFavoriteRepo(database)
	tokens := auth.NewTokens(cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)

	authHandler := &handlers.AuthHandler{Users: userRepo, Tokens: tokens, Dev: cfg.IsDev()}
	userHandler := &handlers.UserHandler{Users: userRepo, Favorites: favoriteRepo, Uploads: store, Dev: cfg.IsDev()}
	favoriteHandler := &handlers.FavoriteHandler{Favorites: favoriteRepo, Dev: cfg.IsDev()}

	authGate := middleware.Authenticate(tokens, userRepo)
	authLimiter := middleware.AuthRateLimiter()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(false))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to the ModernHN API"}`))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Uploaded profile images are served straight off disk.
	if store != nil {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(store.Dir())))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authGate)
				r.Get("/profile", userHandler.Profile)
				r.With(middleware.MaxBytes(cfg.MaxUploadBytes + middleware.DefaultMaxBodyBytes)).
					Put("/profile", userHandler.UpdateProfile)
			})
			r.Get("/public", userHandler.PublicUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Get("/{id}/favorites", userHandler.UserFavorites)
			r.Get("/{id}/avatar", userHandler.Avatar)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Use(authGate)
			r.Get("/", favoriteHandler.List)
			r.With(middleware.MaxBytes(middleware.DefaultMaxBodyBytes)).
				Post("/", favoriteHandler.Add)
			r.Delete("/{storyId}", favoriteHandler.Remove)
		})
	})

	return r
}
