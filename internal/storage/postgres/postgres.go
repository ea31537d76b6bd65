package postgres

import (
	"context"
	"errors"
	"fmt"
	"moviecatalog/proj/internal/storage"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	Conn *pgxpool.Pool
}

const ErrConflictCode = "23505"

// New configures a connection pool. Connections are opened lazily, so a
// database that is down at startup only surfaces on Ping or the first query.
func New(ctx context.Context, dsn string, maxConns int, maxConnIdleTime, connectTimeout time.Duration) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnIdleTime = maxConnIdleTime
	if connectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = connectTimeout
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{Conn: pool}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return MapError(s.Conn.Ping(ctx))
}

func (s *Storage) Close() {
	s.Conn.Close()
}

// MapError translates driver errors into storage sentinels. Errors that mean
// the database cannot be reached become storage.ErrUnavailable.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	var (
		pgErr      *pgconn.PgError
		connectErr *pgconn.ConnectError
		netErr     net.Error
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgErr):
		if pgErr.Code == ErrConflictCode {
			return fmt.Errorf("%w: %s", storage.ErrConflict, pgErr.ConstraintName)
		}
		return err
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err):
		return fmt.Errorf("%w: %w", storage.ErrUnavailable, err)
	}
	return err
}
