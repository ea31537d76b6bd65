package main

import (
	"errors"
	"moviecatalog/proj/internal/domain/filters"
	"moviecatalog/proj/internal/services/movies"
	"net/http"
)

const degradedMsg = "Movie provider is unavailable, showing cached or offline results"

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

// upstreamFailure answers a search that produced no data at all.
func (app *Application) upstreamFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, movies.ErrMediaNotFound) {
		app.Http.NotFound(w, r, "No movies found")
		return
	}
	app.Http.setupLogPerReq(r).Warn("movie provider failed", "errMsg", errString(err))
	app.Http.BadGateway(w, r, "Movie provider is unavailable, please try again later")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (app *Application) searchMovies(w http.ResponseWriter, r *http.Request) {
	query, violations := app.validator.Search(r.URL.Query())
	if !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	out := app.movies.Search(r.Context(), query)
	if !out.OK && len(out.Results) == 0 {
		app.upstreamFailure(w, r, out.Err)
		return
	}
	pageSize := query.Limit
	if pageSize <= 0 {
		pageSize = app.movies.PageSize()
	}
	msg := ""
	if out.Degraded() {
		msg = degradedMsg
	}
	app.Http.Ok(w, r, envelop{
		"data":       out.Results,
		"pagination": filters.NewPagination(out.Page, out.TotalCount, pageSize),
		"fromCache":  out.FromCache,
		"query": envelop{
			"search": query.Text,
			"type":   orAll(query.Type.String()),
			"year":   orAll(query.Year),
		},
	}, msg)
}

func (app *Application) getMovie(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if violations := app.validator.MediaID(id); !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	out := app.movies.Lookup(r.Context(), id)
	msg := ""
	if !out.OK {
		msg = degradedMsg
	}
	app.Http.Ok(w, r, envelop{
		"data":      out.Detail,
		"fromCache": out.FromCache,
	}, msg)
}

func (app *Application) popularMovies(w http.ResponseWriter, r *http.Request) {
	limit, violations := app.validator.Limit(r.URL.Query())
	if !violations.Empty() {
		app.Http.ValidationFailed(w, r, violations)
		return
	}
	app.Http.Ok(w, r, envelop{"data": app.movies.Popular(limit)}, "")
}

func (app *Application) trendingMovies(w http.ResponseWriter, r *http.Request) {
	out := app.movies.Trending(r.Context())
	if !out.OK && len(out.Results) == 0 {
		app.upstreamFailure(w, r, out.Err)
		return
	}
	app.Http.Ok(w, r, envelop{
		"data":      out.Results,
		"term":      out.Term,
		"fromCache": out.FromCache,
	}, "Popular movies - "+out.Term)
}

func (app *Application) cacheStats(w http.ResponseWriter, r *http.Request) {
	app.Http.Ok(w, r, envelop{"cache": app.movies.CacheStats()}, "")
}

func (app *Application) clearCache(w http.ResponseWriter, r *http.Request) {
	n := app.movies.ClearCache()
	app.Http.Ok(w, r, envelop{"cleared": n}, "Cache cleared")
}

func (app *Application) testConnection(w http.ResponseWriter, r *http.Request) {
	report := app.movies.TestConnection(r.Context())
	details := envelop{
		"provider":  report.Provider,
		"latencyMs": report.Latency.Milliseconds(),
	}
	if report.APIKey != "" {
		details["apiKey"] = report.APIKey
	}
	if !report.OK {
		app.Http.Response(w, r, envelop{"details": details}, report.Message, http.StatusServiceUnavailable)
		return
	}
	app.Http.Ok(w, r, envelop{"details": details}, report.Message)
}
