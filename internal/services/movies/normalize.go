package movies

import (
	"moviecatalog/proj/internal/clients/omdb"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/models"
	"strconv"
	"strings"
)

func available(s string) string {
	s = strings.TrimSpace(s)
	if s == omdb.NotAvailable {
		return ""
	}
	return s
}

func splitList(s string) []string {
	s = available(s)
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// optional is available for fields that encode as null when absent.
func optional(s string) *string {
	if s = available(s); s == "" {
		return nil
	}
	return &s
}

func mediaType(s string) fields.MediaType {
	t, err := fields.ParseMediaType(s)
	if err != nil {
		return fields.MediaType(strings.ToLower(s))
	}
	return t
}

func toSearchResults(items []omdb.SearchItem) []models.SearchResult {
	out := make([]models.SearchResult, 0, len(items))
	for _, it := range items {
		out = append(out, models.SearchResult{
			ExternalID: it.ImdbID,
			Title:      it.Title,
			Year:       available(it.Year),
			Type:       mediaType(it.Type),
			Poster:     optional(it.Poster),
		})
	}
	return out
}

func toMediaDetail(t *omdb.TitleResponse) models.MediaDetail {
	return models.MediaDetail{
		SearchResult: models.SearchResult{
			ExternalID: t.ImdbID,
			Title:      t.Title,
			Year:       available(t.Year),
			Type:       mediaType(t.Type),
			Poster:     optional(t.Poster),
		},
		Rated:    optional(t.Rated),
		Plot:     optional(t.Plot),
		Director: optional(t.Director),
		Writer:   optional(t.Writer),
		Actors:   splitList(t.Actors),
		Genres:   splitList(t.Genre),
		Runtime:  optional(t.Runtime),
		Rating:   fields.ParseRating(t.ImdbRating),
		Released: optional(t.Released),
		Awards:   optional(t.Awards),
		Language: optional(t.Language),
		Country:  optional(t.Country),
	}
}

// totalResults falls back to the page size when the provider count is missing.
func totalResults(raw string, onPage int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < onPage {
		return onPage
	}
	return n
}
