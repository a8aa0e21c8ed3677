package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrapeKeyIsStable(t *testing.T) {
	a := ScrapeKey("https://example.com/?q=a b")
	b := ScrapeKey("https://example.com/?q=a b")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "scrapes/"))
	assert.True(t, strings.HasSuffix(a, ".json"))
	assert.NotEqual(t, a, ScrapeKey("https://example.org"))
}

func TestDecodeScrape(t *testing.T) {
	now := time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(ScrapeObject{
		URL:       "https://example.com",
		Title:     "Example",
		Text:      "cached text",
		Timestamp: now.Add(-time.Hour),
	})
	require.NoError(t, err)

	title, text, ok, err := decodeScrape(data, "https://example.com", 24*time.Hour, now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Example", title)
	assert.Equal(t, "cached text", text)

	_, _, ok, _ = decodeScrape(data, "https://example.com", 30*time.Minute, now)
	assert.False(t, ok, "expired entry")

	_, _, ok, _ = decodeScrape(data, "https://example.com", 0, now.Add(1000*time.Hour))
	assert.True(t, ok, "zero ttl never expires")

	_, _, ok, _ = decodeScrape(data, "https://other.example", 24*time.Hour, now)
	assert.False(t, ok, "hash collision guard")

	_, _, ok, err = decodeScrape([]byte("{not json"), "https://example.com", time.Hour, now)
	assert.NoError(t, err)
	assert.False(t, ok)
}
