package bsky

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveHandleURL(t *testing.T) {
	result := ResolveHandleURL(DefaultServiceURL, "alice.bsky.social")

	expected := fmt.Sprintf("%s/xrpc/%s?handle=alice.bsky.social", DefaultServiceURL, ProcResolveHandle)
	assert.Equal(t, expected, result)

	_, err := url.Parse(result)
	assert.NoError(t, err)
}

func TestGetProfileURL(t *testing.T) {
	result := GetProfileURL(DefaultServiceURL, "did:plc:abc123")

	expected := fmt.Sprintf("%s/xrpc/%s?actor=%s", DefaultServiceURL, ProcGetProfile, url.QueryEscape("did:plc:abc123"))
	assert.Equal(t, expected, result)
}

func TestGetAuthorFeedURL(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		cursor string
		query  url.Values
	}{
		{
			name:  "first page",
			limit: 50,
			query: url.Values{"actor": {"did:plc:abc"}, "limit": {"50"}},
		},
		{
			name:   "with cursor",
			limit:  100,
			cursor: "2024-03-01T00:00:00Z",
			query:  url.Values{"actor": {"did:plc:abc"}, "limit": {"100"}, "cursor": {"2024-03-01T00:00:00Z"}},
		},
		{
			name:  "limit above page cap is clamped",
			limit: 500,
			query: url.Values{"actor": {"did:plc:abc"}, "limit": {"100"}},
		},
		{
			name:  "zero limit falls back to page cap",
			limit: 0,
			query: url.Values{"actor": {"did:plc:abc"}, "limit": {"100"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetAuthorFeedURL(DefaultServiceURL, "did:plc:abc", tt.limit, tt.cursor)

			parsed, err := url.Parse(result)
			assert.NoError(t, err)
			assert.Equal(t, "/xrpc/"+ProcGetAuthorFeed, parsed.Path)
			assert.Equal(t, tt.query, parsed.Query())
		})
	}
}

func TestGetActorLikesURL(t *testing.T) {
	result := GetActorLikesURL(DefaultServiceURL, "did:plc:abc", 25, "")

	parsed, err := url.Parse(result)
	assert.NoError(t, err)
	assert.Equal(t, "/xrpc/"+ProcGetActorLikes, parsed.Path)
	assert.Equal(t, "25", parsed.Query().Get("limit"))
}

func TestGetFeedURL(t *testing.T) {
	feedURI := "at://did:plc:abc/app.bsky.feed.generator/cats"
	result := GetFeedURL(DefaultServiceURL, feedURI, 30, "")

	parsed, err := url.Parse(result)
	assert.NoError(t, err)
	assert.Equal(t, "/xrpc/"+ProcGetFeed, parsed.Path)
	// The at:// URI must survive query encoding round-trip.
	assert.Equal(t, feedURI, parsed.Query().Get("feed"))
}

func TestGetActorFeedsURL(t *testing.T) {
	result := GetActorFeedsURL(DefaultServiceURL, "alice.bsky.social")

	parsed, err := url.Parse(result)
	assert.NoError(t, err)
	assert.Equal(t, "/xrpc/"+ProcGetActorFeeds, parsed.Path)
	assert.Equal(t, "alice.bsky.social", parsed.Query().Get("actor"))
}
