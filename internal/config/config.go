package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug     bool     `yaml:"debug" env:"DEBUG"`
	AppSecret string   `yaml:"app_secret" env:"APP_SECRET" env-default:"change-me"`
	Limiter   Limiter  `yaml:"limiter"`
	Cors      Cors     `yaml:"cors"`
	Server    Server   `yaml:"server"`
	DB        DB       `yaml:"db"`
	Upstream  Upstream `yaml:"upstream"`
	Cache     Cache    `yaml:"cache"`
	Auth      Auth     `yaml:"auth"`
	SMTP      SMTP     `yaml:"smtp"`
	Tasks     Tasks    `yaml:"tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Cors struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"http://localhost:5173,http://localhost:3000"`
}

type Server struct {
	Port string `yaml:"port" env:"PORT" env-default:"5000"`
	Host string `yaml:"host" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"DATABASE_URL" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env-default:"2s"`
	// When false the API starts without a reachable database and user
	// endpoints answer 503 until it comes back.
	Required bool `yaml:"required"`
}

type Upstream struct {
	Mode         string        `yaml:"mode" env:"UPSTREAM_MODE" env-default:"live"`
	BaseURL      string        `yaml:"base_url" env-default:"http://www.omdbapi.com/"`
	ApiKey       string        `yaml:"api_key" env:"OMDB_API_KEY"`
	MinInterval  time.Duration `yaml:"min_interval" env-default:"1s"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	ProbeTimeout time.Duration `yaml:"probe_timeout" env-default:"3s"`
	PageSize     int           `yaml:"page_size" env-default:"10"`
}

const (
	UpstreamModeLive    = "live"
	UpstreamModeFixture = "fixture"
)

// Zero TTL keeps entries for the lifetime of the process.
type Cache struct {
	SearchTTL time.Duration `yaml:"search_ttl" env-default:"0s"`
	DetailTTL time.Duration `yaml:"detail_ttl" env-default:"0s"`
	// Searches normally always ask the provider and use the cache only as a
	// fallback; this answers them from fresh entries instead.
	ServeSearchFromCache bool `yaml:"serve_search_from_cache"`
}

type Auth struct {
	TokenTTL            time.Duration `yaml:"token_ttl" env-default:"24h"`
	AdminOnlyCacheClear bool          `yaml:"admin_only_cache_clear"`
}

type SMTP struct {
	Host     string        `yaml:"host" env:"SMTP_HOST"`
	Port     int           `yaml:"port" env-default:"587"`
	Username string        `yaml:"username" env:"SMTP_USERNAME"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender   string        `yaml:"sender" env-default:"Movie Catalog <no-reply@moviecatalog.local>"`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
	Retries  int           `yaml:"retries" env-default:"3"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"2"`
	QueueSize int `yaml:"queue_size" env-default:"100"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads an optional .env file into the environment and then the YAML config,
// letting environment variables override file values.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if cfg.Upstream.Mode != UpstreamModeLive && cfg.Upstream.Mode != UpstreamModeFixture {
		return nil, fmt.Errorf("unknown upstream mode %q", cfg.Upstream.Mode)
	}
	return &cfg, nil
}
