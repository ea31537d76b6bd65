package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestHandleWritesMessageAndAttrs(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log.With("op", "movies.Gateway.Search").Info("cache hit", "key", "search:batman")

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "cache hit")
	assert.Contains(t, out, `"op": "movies.Gateway.Search"`)
	assert.Contains(t, out, `"key": "search:batman"`)
}
