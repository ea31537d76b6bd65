package models

import (
	"moviecatalog/proj/internal/domain/fields"
	"time"
)

type SearchResult struct {
	ExternalID string           `json:"imdbID"` // Provider identifier, e.g. tt1375666
	Title      string           `json:"title"`  // Display title
	Year       string           `json:"year"`   // Release year as reported by the provider ("2010", "2008–2012")
	Type       fields.MediaType `json:"type"`   // movie, series or episode
	Poster     *string          `json:"poster"` // Poster URL, null when the provider has none
}

// MediaDetail fields the provider does not know encode as null.
type MediaDetail struct {
	SearchResult
	Rated    *string       `json:"rated"`
	Plot     *string       `json:"plot"`
	Director *string       `json:"director"`
	Writer   *string       `json:"writer"`
	Actors   []string      `json:"actors"`
	Genres   []string      `json:"genre"`
	Runtime  *string       `json:"runtime"`
	Rating   fields.Rating `json:"imdbRating"`
	Released *string       `json:"released"`
	Awards   *string       `json:"awards"`
	Language *string       `json:"language"`
	Country  *string       `json:"country"`
}

type PopularMovie struct {
	SearchResult
	SearchCount int `json:"searchCount"`
}

// SearchQuery is a validated and normalised search request.
type SearchQuery struct {
	Text  string
	Year  string
	Type  fields.MediaType
	Page  int
	Limit int
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	Age          *int      `json:"age,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type AuthTokens struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
