package movies

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"moviecatalog/proj/internal/clients/omdb"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/domain/models"
	"moviecatalog/proj/internal/lib/cache"
	"moviecatalog/proj/internal/lib/throttle"
	"slices"
	"strings"
	"time"
)

const (
	DefaultMinInterval  = time.Second
	DefaultProbeTimeout = 3 * time.Second

	trendingSize = 6
	topEntries   = 5
)

// Provider is the upstream movie database.
type Provider interface {
	Name() string
	APIKeyHint() string
	Search(ctx context.Context, req omdb.SearchRequest) (*omdb.SearchResponse, error)
	Title(ctx context.Context, id string) (*omdb.TitleResponse, error)
	Probe(ctx context.Context) error
}

type Options struct {
	// MinInterval separates consecutive upstream calls.
	MinInterval time.Duration
	// SearchTTL and DetailTTL bound how long a cached answer counts as fresh.
	// Zero keeps entries for the life of the process.
	SearchTTL time.Duration
	DetailTTL time.Duration
	// ServeSearchFromCache answers searches from a fresh cache entry instead
	// of asking the provider again. Detail lookups always do.
	ServeSearchFromCache bool
	PageSize             int
	ProbeTimeout         time.Duration
	// Pick chooses the trending term; it gets the number of terms.
	Pick func(n int) int
	Now  func() time.Time
}

func (o *Options) withDefaults() {
	if o.MinInterval <= 0 {
		o.MinInterval = DefaultMinInterval
	}
	if o.PageSize <= 0 {
		o.PageSize = filters.DefaultPageSize
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.Pick == nil {
		o.Pick = rand.IntN
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// cached holds either a search page or a title detail.
type cached struct {
	search *searchPage
	detail *models.MediaDetail
}

type searchPage struct {
	query      string
	results    []models.SearchResult
	totalCount int
}

func (c cached) title() string {
	switch {
	case c.detail != nil:
		return c.detail.Title
	case c.search != nil:
		return c.search.query
	}
	return ""
}

// Gateway fronts the upstream provider with a throttle, an in-memory cache
// and offline fallback data. It is safe for concurrent use.
type Gateway struct {
	log      *slog.Logger
	provider Provider
	opts     Options
	gate     *throttle.Gate
	cache    *cache.Cache[cached]
	offline  *offlineData
}

func New(log *slog.Logger, provider Provider, opts Options) *Gateway {
	opts.withDefaults()
	return &Gateway{
		log:      log,
		provider: provider,
		opts:     opts,
		gate:     throttle.New(opts.MinInterval),
		cache:    cache.New(cache.WithClock[cached](opts.Now)),
		offline:  loadOfflineData(),
	}
}

func (g *Gateway) PageSize() int {
	return g.opts.PageSize
}

type SearchOutcome struct {
	// OK is true when Results came from the provider or a fresh cache entry.
	OK         bool
	Results    []models.SearchResult
	TotalCount int
	Page       int
	FromCache  bool
	// Err explains why the provider could not answer. It is set whenever OK
	// is false.
	Err error

	offline bool
}

// Degraded reports whether the outcome carries fallback data.
func (o SearchOutcome) Degraded() bool {
	return !o.OK && len(o.Results) > 0
}

func searchKey(q models.SearchQuery, page int) string {
	return fmt.Sprintf("search:%s:%s:%s:%d", strings.ToLower(q.Text), q.Year, q.Type, page)
}

func detailKey(id string) string {
	return "detail:" + id
}

// Search returns page q.Page of the results with q.Limit results per page,
// defaulting to the provider page size. A page that spans several provider
// pages reads each of them through the cache and the throttle.
func (g *Gateway) Search(ctx context.Context, q models.SearchQuery) SearchOutcome {
	size := q.Limit
	if size <= 0 {
		size = g.opts.PageSize
	}
	page := max(q.Page, 1)
	start := (page - 1) * size
	perPage := g.opts.PageSize
	providerPage := start/perPage + 1
	skip := start % perPage

	out := g.fetchPage(ctx, q, providerPage)
	out.Page = page
	if len(out.Results) == 0 {
		return out
	}
	if out.offline {
		out.Results = window(out.Results, start, size)
		return out
	}

	results := slices.Clone(out.Results)
	last := out
	for len(results) < skip+size && len(last.Results) >= perPage && providerPage*perPage < out.TotalCount {
		providerPage++
		last = g.fetchPage(ctx, q, providerPage)
		if last.offline || len(last.Results) == 0 {
			if last.Err != nil {
				out.OK, out.FromCache, out.Err = false, true, last.Err
			}
			break
		}
		results = append(results, last.Results...)
		out.OK = out.OK && last.OK
		out.FromCache = out.FromCache || last.FromCache
		if out.Err == nil {
			out.Err = last.Err
		}
	}
	out.Results = window(results, skip, size)
	return out
}

func window(results []models.SearchResult, from, size int) []models.SearchResult {
	from = min(from, len(results))
	return results[from:min(from+size, len(results))]
}

// fetchPage answers one provider page: live, from the cache, or from the
// offline data, which is not paged.
func (g *Gateway) fetchPage(ctx context.Context, q models.SearchQuery, page int) SearchOutcome {
	const op = "movies.Gateway.Search"
	key := searchKey(q, page)
	log := g.log.With("op", op, "key", key)

	if g.opts.ServeSearchFromCache {
		if c, ok := g.cache.Get(key); ok && c.search != nil {
			log.Debug("served from cache")
			return SearchOutcome{
				OK:         true,
				Results:    c.search.results,
				TotalCount: c.search.totalCount,
				Page:       page,
				FromCache:  true,
			}
		}
	}

	var resp *omdb.SearchResponse
	err := g.call(ctx, func(ctx context.Context) (err error) {
		resp, err = g.provider.Search(ctx, omdb.SearchRequest{
			Query: q.Text,
			Year:  q.Year,
			Type:  q.Type.String(),
			Page:  page,
		})
		return err
	})
	if err == nil {
		results := toSearchResults(resp.Search)
		total := totalResults(resp.TotalResults, len(results))
		g.cache.Set(key, cached{search: &searchPage{
			query:      q.Text,
			results:    results,
			totalCount: total,
		}}, g.opts.SearchTTL)
		return SearchOutcome{OK: true, Results: results, TotalCount: total, Page: page}
	}

	err = classify(err)
	log.Warn("provider unavailable, using fallback", "errMsg", err.Error())
	if c, ok := g.cache.Peek(key); ok && c.search != nil {
		return SearchOutcome{
			Results:    c.search.results,
			TotalCount: c.search.totalCount,
			Page:       page,
			FromCache:  true,
			Err:        err,
		}
	}
	results := g.offline.search(q)
	return SearchOutcome{
		Results:    results,
		TotalCount: len(results),
		Page:       page,
		FromCache:  true,
		Err:        err,
		offline:    true,
	}
}

type DetailOutcome struct {
	OK        bool
	Detail    models.MediaDetail
	FromCache bool
	Err       error
}

// Lookup returns full details for a provider id. It always yields a record:
// live, cached, bundled offline data or a placeholder.
func (g *Gateway) Lookup(ctx context.Context, id string) DetailOutcome {
	const op = "movies.Gateway.Lookup"
	key := detailKey(id)
	log := g.log.With("op", op, "id", id)

	if c, ok := g.cache.Get(key); ok && c.detail != nil {
		log.Debug("served from cache")
		return DetailOutcome{OK: true, Detail: *c.detail, FromCache: true}
	}

	var resp *omdb.TitleResponse
	err := g.call(ctx, func(ctx context.Context) (err error) {
		resp, err = g.provider.Title(ctx, id)
		return err
	})
	if err == nil {
		detail := toMediaDetail(resp)
		g.cache.Set(key, cached{detail: &detail}, g.opts.DetailTTL)
		return DetailOutcome{OK: true, Detail: detail}
	}

	err = classify(err)
	log.Warn("provider unavailable, using fallback", "errMsg", err.Error())
	if c, ok := g.cache.Peek(key); ok && c.detail != nil {
		return DetailOutcome{Detail: *c.detail, FromCache: true, Err: err}
	}
	return DetailOutcome{Detail: g.offline.detail(id), FromCache: true, Err: err}
}

// Popular lists the bundled popular titles, most searched first.
func (g *Gateway) Popular(limit int) []models.PopularMovie {
	if limit <= 0 {
		limit = filters.DefaultPageSize
	}
	return g.offline.popular(limit)
}

type TrendingOutcome struct {
	Term string
	SearchOutcome
}

// Trending searches one of a fixed set of popular terms and keeps the first
// few results.
func (g *Gateway) Trending(ctx context.Context) TrendingOutcome {
	terms := g.offline.Trending
	term := terms[g.opts.Pick(len(terms))]
	out := g.Search(ctx, models.SearchQuery{Text: term, Page: 1})
	if len(out.Results) > trendingSize {
		out.Results = out.Results[:trendingSize]
	}
	return TrendingOutcome{Term: term, SearchOutcome: out}
}

type TopEntry struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	SearchCount int    `json:"searchCount"`
}

type CacheStats struct {
	Total     int        `json:"total"`
	Active    int        `json:"active"`
	Expired   int        `json:"expired"`
	TopMovies []TopEntry `json:"topMovies"`
}

func (g *Gateway) CacheStats() CacheStats {
	s := g.cache.Stats(topEntries)
	stats := CacheStats{
		Total:     s.Total,
		Active:    s.Active,
		Expired:   s.Expired,
		TopMovies: make([]TopEntry, 0, len(s.Top)),
	}
	for _, e := range s.Top {
		stats.TopMovies = append(stats.TopMovies, TopEntry{
			Key:         e.Key,
			Title:       e.Value.title(),
			SearchCount: e.Hits,
		})
	}
	return stats
}

// ClearCache drops every cached answer and reports how many there were.
func (g *Gateway) ClearCache() int {
	const op = "movies.Gateway.ClearCache"
	n := g.cache.Clear()
	g.log.Info("cache cleared", "op", op, "entries", n)
	return n
}

type ConnectionReport struct {
	OK       bool
	Provider string
	APIKey   string
	Latency  time.Duration
	Message  string
	Err      error
}

// TestConnection probes the provider with a well-known title.
func (g *Gateway) TestConnection(ctx context.Context) ConnectionReport {
	const op = "movies.Gateway.TestConnection"
	log := g.log.With("op", op)
	report := ConnectionReport{
		Provider: g.provider.Name(),
		APIKey:   g.provider.APIKeyHint(),
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.ProbeTimeout)
	defer cancel()
	var start time.Time
	err := g.call(ctx, func(ctx context.Context) error {
		start = g.opts.Now()
		defer func() { report.Latency = g.opts.Now().Sub(start) }()
		return g.provider.Probe(ctx)
	})
	if err != nil {
		report.Err = classify(err)
		report.Message = "Connection to " + report.Provider + " failed: " + err.Error()
		log.Warn("probe failed", "errMsg", err.Error())
		return report
	}
	report.OK = true
	report.Message = "Connection to " + report.Provider + " succeeded"
	return report
}

// call runs fn through the throttle. A provider without credentials fails
// immediately without taking a slot.
func (g *Gateway) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if r, ok := g.provider.(interface{ Ready() error }); ok {
		if err := r.Ready(); err != nil {
			return err
		}
	}
	return g.gate.Do(ctx, func() error {
		return fn(ctx)
	})
}

// classify maps provider failures onto the gateway's error kinds, keeping
// the provider error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, omdb.ErrMissingAPIKey), errors.Is(err, omdb.ErrInvalidAPIKey):
		return fmt.Errorf("%w: %w", ErrUpstreamMisconfigured, err)
	case errors.Is(err, omdb.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrMediaNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
}
