package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type MediaType string

const (
	MediaMovie   MediaType = "movie"
	MediaSeries  MediaType = "series"
	MediaEpisode MediaType = "episode"
)

var MediaTypes = []MediaType{MediaMovie, MediaSeries, MediaEpisode}

// ParseMediaType is case-insensitive and ignores surrounding whitespace.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MediaTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

func (t MediaType) String() string {
	return string(t)
}

// Rating is a numeric score that may be absent. Absent ratings encode as null.
type Rating struct {
	Value float64
	Valid bool
}

func NewRating(v float64) Rating {
	return Rating{Value: v, Valid: true}
}

// ParseRating turns provider strings like "8.8" into a rating; "N/A" or
// anything unparsable yields an absent rating.
func ParseRating(s string) Rating {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return Rating{}
	}
	return NewRating(v)
}

func (r Rating) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

func (r *Rating) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rating{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = NewRating(v)
	return nil
}
