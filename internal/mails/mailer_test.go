package mails

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmailTmpl(t *testing.T) {
	parts, err := parseEmailTmpl("user_welcome.html", map[string]any{
		"name":  "Ann <script>",
		"email": "ann@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Movie Catalog, Ann &lt;script&gt;!", parts["subject"])
	assert.Contains(t, parts["plainBody"], "ann@example.com")
	assert.Contains(t, parts["htmlBody"], "<b>ann@example.com</b>")

	_, err = parseEmailTmpl("missing.html", nil)
	assert.Error(t, err)
}

func TestSendReportsDialFailure(t *testing.T) {
	m := New("127.0.0.1", 1, 200*time.Millisecond, "user", "pass", "Movie Catalog <no-reply@example.com>", 1)
	err := m.Send("ann@example.com", "user_welcome.html", map[string]any{"name": "Ann", "email": "ann@example.com"})
	assert.Error(t, err)
}
