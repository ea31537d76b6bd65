package omdb

import "strings"

// NotAvailable is the provider's placeholder for missing values.
const NotAvailable = "N/A"

type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error,omitempty"`
}

func (e *envelope) failed() bool {
	return strings.EqualFold(e.Response, "False")
}

func (e *envelope) errorMessage() string {
	return e.Error
}

type SearchRequest struct {
	Query string
	Year  string
	Type  string
	Page  int
}

type SearchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	ImdbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type SearchResponse struct {
	envelope
	Search       []SearchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
}

type TitleResponse struct {
	envelope
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Awards     string `json:"Awards"`
	Poster     string `json:"Poster"`
	ImdbRating string `json:"imdbRating"`
	ImdbID     string `json:"imdbID"`
	Type       string `json:"Type"`
}
