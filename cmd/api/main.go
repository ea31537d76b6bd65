package main

import (
	"context"
	"flag"
	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/storage/postgres"
	"os"
)

const version = "1.0.0"

func main() {
	defaultCfgPath := os.Getenv("CONFIG_PATH")
	if defaultCfgPath == "" {
		defaultCfgPath = "config/local.yml"
	}
	cfgPath := flag.String("config", defaultCfgPath, "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	storage, err := postgres.New(context.Background(), cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime, cfg.DB.ConnectTimeout)
	if err != nil {
		log.Error("invalid database configuration", "errMsg", err.Error())
		os.Exit(1)
	}
	defer storage.Close()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
	err = storage.Ping(ctx)
	cancel()
	switch {
	case err == nil:
		log.Info("database connection established")
	case cfg.DB.Required:
		log.Error("database is unreachable", "errMsg", err.Error())
		os.Exit(1)
	default:
		log.Warn("database is unreachable, user endpoints will answer 503 until it is back", "errMsg", err.Error())
	}

	bgTasks := tasks.New(log, cfg.Tasks.Workers, cfg.Tasks.QueueSize)
	bgTasks.Run()

	svc := services.New(log, cfg, storage, bgTasks)
	app := NewApplication(cfg, log, svc.Movies, svc.Users, bgTasks)
	if err := app.serve(); err != nil {
		log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}
