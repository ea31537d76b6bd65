package services

import (
	"context"
	"moviecatalog/proj/internal/clients/omdb"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/storage/postgres"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	log := logger.Discard()

	fixture := NewProvider(log, config.Upstream{Mode: config.UpstreamModeFixture})
	assert.IsType(t, &omdb.Fixture{}, fixture)
	assert.Equal(t, "fixture", fixture.Name())

	live := NewProvider(log, config.Upstream{Mode: config.UpstreamModeLive, BaseURL: "http://localhost", Timeout: time.Second})
	require.IsType(t, &omdb.Client{}, live)
	assert.ErrorIs(t, live.(*omdb.Client).Ready(), omdb.ErrMissingAPIKey)
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		AppSecret: "secret",
		Upstream:  config.Upstream{Mode: config.UpstreamModeFixture, PageSize: 10},
		Auth:      config.Auth{TokenTTL: time.Hour},
	}
	storage, err := postgres.New(context.Background(), "postgres://nobody@localhost:1/none", 1, time.Minute, time.Second)
	require.NoError(t, err)
	defer storage.Close()

	s := New(logger.Discard(), cfg, storage, nil)
	require.NotNil(t, s.Movies)
	require.NotNil(t, s.Users)
	assert.Equal(t, 10, s.Movies.PageSize())
	assert.True(t, s.Movies.Lookup(context.Background(), "tt1375666").OK)
}
