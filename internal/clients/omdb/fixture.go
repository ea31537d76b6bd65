package omdb

import (
	"context"
	_ "embed"
	"encoding/json"
	"strconv"
	"strings"
)

//go:embed fixtures/catalog.json
var catalogJSON []byte

const fixturePageSize = 10

// Fixture answers like the provider from a bundled catalogue and never
// touches the network. It backs upstream.mode=fixture and local demos.
type Fixture struct {
	titles []TitleResponse
}

func NewFixture() *Fixture {
	var titles []TitleResponse
	if err := json.Unmarshal(catalogJSON, &titles); err != nil {
		panic("omdb: broken fixture catalogue: " + err.Error())
	}
	return &Fixture{titles: titles}
}

func (f *Fixture) Name() string {
	return "fixture"
}

func (f *Fixture) APIKeyHint() string {
	return ""
}

func (f *Fixture) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query := strings.ToLower(req.Query)
	var matched []SearchItem
	for _, t := range f.titles {
		if !strings.Contains(strings.ToLower(t.Title), query) {
			continue
		}
		if req.Type != "" && t.Type != req.Type {
			continue
		}
		if req.Year != "" && !strings.HasPrefix(t.Year, req.Year) {
			continue
		}
		matched = append(matched, SearchItem{
			Title:  t.Title,
			Year:   t.Year,
			ImdbID: t.ImdbID,
			Type:   t.Type,
			Poster: t.Poster,
		})
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * fixturePageSize
	if len(matched) == 0 || start >= len(matched) {
		return nil, newProviderError("Movie not found!")
	}
	end := min(start+fixturePageSize, len(matched))
	return &SearchResponse{
		envelope:     envelope{Response: "True"},
		Search:       matched[start:end],
		TotalResults: strconv.Itoa(len(matched)),
	}, nil
}

func (f *Fixture) Title(ctx context.Context, id string) (*TitleResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, t := range f.titles {
		if t.ImdbID == id {
			t.Response = "True"
			return &t, nil
		}
	}
	return nil, newProviderError("Incorrect IMDb ID.")
}

func (f *Fixture) Probe(ctx context.Context) error {
	return ctx.Err()
}
