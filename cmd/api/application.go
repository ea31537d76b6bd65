package main

import (
	"context"
	"log/slog"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/validator"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/users"
)

type MoviesGateway interface {
	Search(ctx context.Context, q models.SearchQuery) movies.SearchOutcome
	Lookup(ctx context.Context, id string) movies.DetailOutcome
	Popular(limit int) []models.PopularMovie
	Trending(ctx context.Context) movies.TrendingOutcome
	CacheStats() movies.CacheStats
	ClearCache() int
	TestConnection(ctx context.Context) movies.ConnectionReport
	PageSize() int
}

type UsersService interface {
	Create(ctx context.Context, params users.CreateParams) (*models.User, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, filters.ListPagination, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, params users.UpdateParams) (*models.User, error)
	Delete(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string) (*models.AuthTokens, error)
	VerifyToken(token string) (*users.Claims, error)
}

// Shutdowner is anything that must be stopped after the server, like the
// background task pool.
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

type Application struct {
	cfg       *config.Config
	log       *slog.Logger
	Http      *Http
	movies    MoviesGateway
	users     UsersService
	validator *validator.Validator
	bgTasks   Shutdowner
}

func NewApplication(
	cfg *config.Config,
	log *slog.Logger,
	moviesGateway MoviesGateway,
	usersService UsersService,
	bgTasks Shutdowner,
) *Application {
	policy := validator.DefaultPolicy()
	return &Application{
		cfg:       cfg,
		log:       log,
		validator: validator.New(policy),
		movies:    moviesGateway,
		users:     usersService,
		bgTasks:   bgTasks,
		Http: &Http{
			log: log,
			cfg: cfg,
		},
	}
}
