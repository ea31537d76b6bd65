package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"moviecatalog/proj/internal/clients/omdb"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/services/movies"
	"moviecatalog/proj/internal/services/users"
	"moviecatalog/proj/internal/storage"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var errProviderDown = errors.New("dial tcp: i/o timeout")

// countingProvider serves the fixture catalogue and counts upstream calls.
type countingProvider struct {
	*omdb.Fixture
	calls atomic.Int32
	down  atomic.Bool
}

func newCountingProvider() *countingProvider {
	return &countingProvider{Fixture: omdb.NewFixture()}
}

func (p *countingProvider) Search(ctx context.Context, req omdb.SearchRequest) (*omdb.SearchResponse, error) {
	p.calls.Add(1)
	if p.down.Load() {
		return nil, errProviderDown
	}
	return p.Fixture.Search(ctx, req)
}

func (p *countingProvider) Title(ctx context.Context, id string) (*omdb.TitleResponse, error) {
	p.calls.Add(1)
	if p.down.Load() {
		return nil, errProviderDown
	}
	return p.Fixture.Title(ctx, id)
}

func (p *countingProvider) Probe(ctx context.Context) error {
	p.calls.Add(1)
	if p.down.Load() {
		return errProviderDown
	}
	return nil
}

// memStore keeps users in memory and mimics the unique email constraint.
type memStore struct {
	mu          sync.Mutex
	users       map[string]models.User
	writes      int
	unavailable bool
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]models.User)}
}

func (s *memStore) check() error {
	if s.unavailable {
		return storage.ErrUnavailable
	}
	return nil
}

func (s *memStore) Get(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, storage.ErrConflict
		}
	}
	s.writes++
	u := *user
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return &u, nil
}

func (s *memStore) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, 0, err
	}
	list := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		if search == "" || strings.Contains(strings.ToLower(u.Name+" "+u.Email), strings.ToLower(search)) {
			list = append(list, u)
		}
	}
	total := len(list)
	start := min(f.Offset(), total)
	end := min(start+f.Limit(), total)
	return list[start:end], total, nil
}

func (s *memStore) Update(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, err
	}
	if _, ok := s.users[user.ID]; !ok {
		return nil, storage.ErrNotFound
	}
	s.writes++
	u := *user
	s.users[u.ID] = u
	return &u, nil
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	s.writes++
	delete(s.users, id)
	return nil
}

type testApp struct {
	*Application
	provider *countingProvider
	store    *memStore
	handler  http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		AppSecret: "test-secret",
		Cors:      config.Cors{AllowedOrigins: []string{"http://localhost:5173"}},
		Upstream:  config.Upstream{Mode: config.UpstreamModeFixture, PageSize: 10},
		Auth:      config.Auth{TokenTTL: time.Hour},
	}
}

func newTestApplication(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	log := logger.Discard()
	provider := newCountingProvider()
	store := newMemStore()
	gateway := movies.New(log, provider, movies.Options{
		MinInterval: time.Millisecond,
		Pick:        func(int) int { return 1 },
	})
	usersService := users.New(log, store, nil, nil, users.Options{
		Secret:     []byte(cfg.AppSecret),
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: bcrypt.MinCost,
	})
	app := NewApplication(cfg, log, gateway, usersService, nil)
	return &testApp{
		Application: app,
		provider:    provider,
		store:       store,
		handler:     app.routes(),
	}
}

type testResponse struct {
	Code int
	Body map[string]any
}

func (ta *testApp) do(t *testing.T, method, target string, body string, headers ...string) testResponse {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)

	resp := testResponse{Code: rec.Code}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp.Body), rec.Body.String())
	}
	return resp
}
