package main

import (
	"context"
	"errors"
	"fmt"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/services/users"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

func (app *Application) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err, ok := rec.(error)
				if !ok {
					err = fmt.Errorf("%v", rec)
				}
				w.Header().Set("Connection", "close")
				app.Http.ServerError(w, r, err, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

const clientIdleTimeout = 5 * time.Minute

func (app *Application) RateLimiter(next http.Handler) http.Handler {
	const op = "middlewares.RateLimiter"
	log := app.log.With("op", op)
	if !app.cfg.Limiter.Enabled {
		return next
	}
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	clients := make(map[string]*client)
	var mu sync.Mutex
	go func() {
		for {
			time.Sleep(clientIdleTimeout)
			mu.Lock()
			for ip, client := range clients {
				if time.Since(client.lastSeen) > clientIdleTimeout {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(app.cfg.Limiter.Rps), app.cfg.Limiter.Burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()
		allowed := c.limiter.Allow()
		mu.Unlock()

		if !allowed {
			log.Warn("rate limit exceeded", "ip", ip)
			app.Http.Response(
				w, r,
				envelop{"errors": []string{"rate limit exceeded"}},
				"Too many requests, please slow down",
				http.StatusTooManyRequests,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type CtxKey string

const CtxKeyUser CtxKey = "user"

func contextGetUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(CtxKeyUser).(*models.User)
	return user
}

// Authenticate resolves a bearer token to the current user. Requests
// without an Authorization header pass through anonymously.
func (app *Application) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}
		log := app.Http.setupLogPerReq(r)
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			log.Warn("Invalid auth header")
			app.Http.BadRequest(w, r, "Invalid Authorization header, should be 'Bearer <token>'")
			return
		}
		claims, err := app.users.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			app.Http.Unauthorized(w, r, "Invalid or expired token")
			return
		}
		user, err := app.users.Get(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				log.Warn("token for unknown user", "user_id", claims.UserID)
				app.Http.Unauthorized(w, r, "Invalid or expired token")
				return
			}
			app.userError(w, r, err)
			return
		}
		if !user.IsActive {
			app.Http.Unauthorized(w, r, "Account is disabled")
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), CtxKeyUser, user))
		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthenticatedUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextGetUser(r) == nil {
			app.Http.Unauthorized(w, r, "You must be authenticated to access this resource")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAdmin(next http.Handler) http.Handler {
	return app.requireAuthenticatedUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contextGetUser(r).IsAdmin() {
			app.Http.Forbidden(w, r, "Only administrators can access this resource")
			return
		}
		next.ServeHTTP(w, r)
	}))
}
