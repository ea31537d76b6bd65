package omdb

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("no matching titles")
	ErrMissingAPIKey = errors.New("api key is not configured")
	ErrInvalidAPIKey = errors.New("api key was rejected")
	ErrLimitReached  = errors.New("request limit reached")
)

// ProviderError carries the message the provider sent with Response:"False".
// It matches one of the sentinels above through errors.Is.
type ProviderError struct {
	Message string
	kind    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("omdb: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.kind
}

func newProviderError(msg string) *ProviderError {
	kind := ErrNotFound
	switch msg {
	case "Invalid API key!", "No API key provided.":
		kind = ErrInvalidAPIKey
	case "Request limit reached!":
		kind = ErrLimitReached
	}
	return &ProviderError{Message: msg, kind: kind}
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("omdb: unexpected status %d", e.Code)
}
