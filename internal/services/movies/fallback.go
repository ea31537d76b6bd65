package movies

import (
	_ "embed"
	"encoding/json"
	"moviecatalog/proj/internal/domain/fields"
	"moviecatalog/proj/internal/domain/models"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

//go:embed fallback.json
var fallbackJSON []byte

const placeholderTitle = "Title unavailable"

const offlinePlot = "Details are not available in offline mode"

// offlineData is served when the provider cannot answer.
type offlineData struct {
	Search   []models.SearchResult `json:"search"`
	Details  []models.MediaDetail  `json:"details"`
	Popular  []models.PopularMovie `json:"popular"`
	Trending []string              `json:"trending"`
}

func loadOfflineData() *offlineData {
	var data offlineData
	if err := json.Unmarshal(fallbackJSON, &data); err != nil {
		panic("movies: broken fallback data: " + err.Error())
	}
	return &data
}

// search returns offline titles containing the query text (case-insensitive),
// closest titles first. Type and year filters apply when set.
func (d *offlineData) search(q models.SearchQuery) []models.SearchResult {
	text := strings.ToLower(strings.TrimSpace(q.Text))
	seen := make(map[string]struct{}, len(d.Search))
	var candidates []models.SearchResult
	for _, r := range d.Search {
		if _, dup := seen[r.ExternalID]; dup {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), text) {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		if q.Year != "" && !strings.HasPrefix(r.Year, q.Year) {
			continue
		}
		seen[r.ExternalID] = struct{}{}
		candidates = append(candidates, r)
	}
	if len(candidates) < 2 {
		return candidates
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	ranks := fuzzy.RankFindNormalizedFold(text, titles)
	sort.Stable(ranks)
	if len(ranks) != len(candidates) {
		return candidates
	}
	ordered := make([]models.SearchResult, 0, len(candidates))
	for _, r := range ranks {
		ordered = append(ordered, candidates[r.OriginalIndex])
	}
	return ordered
}

// detail returns the bundled record for id, or a placeholder that says the
// title is unavailable.
func (d *offlineData) detail(id string) models.MediaDetail {
	for _, m := range d.Details {
		if m.ExternalID == id {
			return m
		}
	}
	plot := offlinePlot
	return models.MediaDetail{
		SearchResult: models.SearchResult{
			ExternalID: id,
			Title:      placeholderTitle,
			Type:       fields.MediaMovie,
		},
		Plot:   &plot,
		Actors: []string{},
		Genres: []string{},
	}
}

func (d *offlineData) popular(limit int) []models.PopularMovie {
	out := make([]models.PopularMovie, len(d.Popular))
	copy(out, d.Popular)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SearchCount > out[j].SearchCount
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
