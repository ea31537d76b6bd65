package services

import (
	"log/slog"
	"moviecatalog/proj/internal/clients/omdb"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/mails"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/users"
	"moviecatalog/proj/internal/storage/postgres"
	"moviecatalog/proj/internal/storage/postgres/models"
)

type Services struct {
	Movies *movies.Gateway
	Users  *users.UserService
}

// NewProvider picks the upstream strategy once, at startup.
func NewProvider(log *slog.Logger, cfg config.Upstream) movies.Provider {
	if cfg.Mode == config.UpstreamModeFixture {
		log.Info("serving movies from the bundled fixture catalogue")
		return omdb.NewFixture()
	}
	client := omdb.New(log, cfg.BaseURL, cfg.ApiKey, cfg.Timeout)
	if err := client.Ready(); err != nil {
		log.Warn("OMDb api key is not configured, every movie request will use fallback data")
	}
	return client
}

func New(log *slog.Logger, cfg *config.Config, storage *postgres.Storage, taskExecutor users.TaskExecutor) *Services {
	gateway := movies.New(log, NewProvider(log, cfg.Upstream), movies.Options{
		MinInterval:          cfg.Upstream.MinInterval,
		SearchTTL:            cfg.Cache.SearchTTL,
		DetailTTL:            cfg.Cache.DetailTTL,
		ServeSearchFromCache: cfg.Cache.ServeSearchFromCache,
		PageSize:             cfg.Upstream.PageSize,
		ProbeTimeout:         cfg.Upstream.ProbeTimeout,
	})

	var mailer users.MailProvider
	if cfg.SMTP.Host != "" {
		mailer = mails.New(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Timeout,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.Sender,
			cfg.SMTP.Retries,
		)
	}
	return &Services{
		Movies: gateway,
		Users: users.New(log, models.New(storage).User, mailer, taskExecutor, users.Options{
			Secret:   []byte(cfg.AppSecret),
			TokenTTL: cfg.Auth.TokenTTL,
		}),
	}
}
