package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *Application) routes() http.Handler {
	router := chi.NewRouter()
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.Http.NotFound(w, r, "Page not found")
	})
	router.MethodNotAllowed(app.Http.MethodNotAllowed)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(app.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(app.RateLimiter)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", app.healthcheck)
		r.Route("/movies", func(r chi.Router) {
			r.Get("/search", app.searchMovies)
			r.Get("/popular", app.popularMovies)
			r.Get("/trending", app.trendingMovies)
			r.Get("/test", app.testConnection)
			r.Get("/cache/stats", app.cacheStats)
			if app.cfg.Auth.AdminOnlyCacheClear {
				r.With(app.Authenticate, app.requireAdmin).Delete("/cache", app.clearCache)
			} else {
				r.Delete("/cache", app.clearCache)
			}
			r.Get("/{id}", app.getMovie)
		})
		r.Route("/users", func(r chi.Router) {
			r.Get("/", app.listUsers)
			r.Post("/", app.createUser)
			r.Post("/login", app.login)
			r.Get("/{id}", app.getUser)
			r.Put("/{id}", app.updateUser)
			r.Delete("/{id}", app.deleteUser)
		})
	})
	return router
}
