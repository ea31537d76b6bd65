package movies

import "errors"

var (
	ErrMediaNotFound         = errors.New("media not found")
	ErrUpstreamUnavailable   = errors.New("movie provider unavailable")
	ErrUpstreamMisconfigured = errors.New("movie provider is not configured")
)
