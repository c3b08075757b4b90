package feed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bskygrab/pkg/bsky"
)

// pageCall records one feed-listing invocation
type pageCall struct {
	method string
	actor  string
	limit  int
	cursor string
}

// fakeLister serves a fixed number of items page by page
type fakeLister struct {
	totalItems int
	calls      []pageCall
	err        error
}

func (f *fakeLister) servePage(method, actor string, limit int, cursor string) (*bsky.FeedResponse, error) {
	f.calls = append(f.calls, pageCall{method: method, actor: actor, limit: limit, cursor: cursor})
	if f.err != nil {
		return nil, f.err
	}

	offset := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "cursor-%d", &offset)
	}

	remaining := f.totalItems - offset
	if remaining < 0 {
		remaining = 0
	}
	count := limit
	if count > remaining {
		count = remaining
	}

	items := make([]bsky.FeedItem, count)
	for i := range items {
		items[i] = bsky.FeedItem{Post: bsky.Post{
			URI: fmt.Sprintf("at://did:plc:abc/app.bsky.feed.post/%d", offset+i),
		}}
	}

	next := ""
	if offset+count < f.totalItems {
		next = fmt.Sprintf("cursor-%d", offset+count)
	}
	return &bsky.FeedResponse{Feed: items, Cursor: next}, nil
}

func (f *fakeLister) GetAuthorFeed(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return f.servePage("author", actor, limit, cursor)
}

func (f *fakeLister) GetActorLikes(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return f.servePage("likes", actor, limit, cursor)
}

func (f *fakeLister) GetFeed(ctx context.Context, feedURI string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return f.servePage("feed", feedURI, limit, cursor)
}

func authoredRequest(limit int) *Request {
	return &Request{
		Account: "alice.bsky.social",
		DID:     "did:plc:abc",
		Mode:    ModeAuthored,
		Limit:   limit,
	}
}

func TestFetchSinglePage(t *testing.T) {
	lister := &fakeLister{totalItems: 500}
	p := NewPaginator(lister, nil)

	items, err := p.Fetch(context.Background(), authoredRequest(50))

	require.NoError(t, err)
	assert.Len(t, items, 50)
	// At most one page means exactly one call, no cursor.
	require.Len(t, lister.calls, 1)
	assert.Equal(t, 50, lister.calls[0].limit)
	assert.Equal(t, "", lister.calls[0].cursor)
}

func TestFetchPaginates(t *testing.T) {
	lister := &fakeLister{totalItems: 500}
	p := NewPaginator(lister, nil)

	items, err := p.Fetch(context.Background(), authoredRequest(250))

	require.NoError(t, err)
	assert.Len(t, items, 250)
	// 250 items at a 100-per-page cap is three pages: 100, 100, 50.
	require.Len(t, lister.calls, 3)
	assert.Equal(t, 100, lister.calls[0].limit)
	assert.Equal(t, 100, lister.calls[1].limit)
	assert.Equal(t, 50, lister.calls[2].limit)

	// Each page advances the cursor returned by the previous one.
	assert.Equal(t, "", lister.calls[0].cursor)
	assert.Equal(t, "cursor-100", lister.calls[1].cursor)
	assert.Equal(t, "cursor-200", lister.calls[2].cursor)

	// No duplicates across page boundaries.
	seen := make(map[string]bool)
	for _, item := range items {
		assert.False(t, seen[item.Post.URI], "duplicate item %s", item.Post.URI)
		seen[item.Post.URI] = true
	}
}

func TestFetchStopsOnExhaustedFeed(t *testing.T) {
	lister := &fakeLister{totalItems: 120}
	p := NewPaginator(lister, nil)

	items, err := p.Fetch(context.Background(), authoredRequest(500))

	// Exhaustion is a short result, not an error.
	require.NoError(t, err)
	assert.Len(t, items, 120)
	assert.Len(t, lister.calls, 2)
}

// stuckLister always answers with an empty page and a fresh cursor
type stuckLister struct {
	calls int
}

func (s *stuckLister) servePage() (*bsky.FeedResponse, error) {
	s.calls++
	return &bsky.FeedResponse{Cursor: fmt.Sprintf("cursor-%d", s.calls)}, nil
}

func (s *stuckLister) GetAuthorFeed(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return s.servePage()
}

func (s *stuckLister) GetActorLikes(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return s.servePage()
}

func (s *stuckLister) GetFeed(ctx context.Context, feedURI string, limit int, cursor string) (*bsky.FeedResponse, error) {
	return s.servePage()
}

func TestFetchStopsOnEmptyPageWithCursor(t *testing.T) {
	lister := &stuckLister{}
	p := NewPaginator(lister, nil)

	items, err := p.Fetch(context.Background(), authoredRequest(500))

	// A cursor on an empty page must not spin the loop.
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, lister.calls)
}

func TestFetchDispatchesOnMode(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		method string
	}{
		{name: "authored", mode: ModeAuthored, method: "author"},
		{name: "liked", mode: ModeLiked, method: "likes"},
		{name: "named feed", mode: ModeNamedFeed, method: "feed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := &fakeLister{totalItems: 10}
			p := NewPaginator(lister, nil)

			req := authoredRequest(5)
			req.Mode = tt.mode
			req.FeedURI = "at://did:plc:abc/app.bsky.feed.generator/cats"

			_, err := p.Fetch(context.Background(), req)

			require.NoError(t, err)
			require.Len(t, lister.calls, 1)
			assert.Equal(t, tt.method, lister.calls[0].method)
		})
	}
}

func TestFetchPropagatesErrors(t *testing.T) {
	lister := &fakeLister{totalItems: 500, err: fmt.Errorf("service unavailable")}
	p := NewPaginator(lister, nil)

	_, err := p.Fetch(context.Background(), authoredRequest(250))

	assert.Error(t, err)
}

func TestFetchRejectsInvalidRequest(t *testing.T) {
	lister := &fakeLister{totalItems: 500}
	p := NewPaginator(lister, nil)

	tests := []struct {
		name string
		req  *Request
	}{
		{name: "missing DID", req: &Request{Account: "alice", Limit: 10}},
		{name: "unbounded", req: &Request{Account: "alice", DID: "did:plc:abc", Limit: Unbounded}},
		{name: "zero limit", req: &Request{Account: "alice", DID: "did:plc:abc", Limit: 0}},
		{name: "feed mode without URI", req: &Request{Account: "alice", DID: "did:plc:abc", Mode: ModeNamedFeed, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Fetch(context.Background(), tt.req)
			assert.Error(t, err)
			assert.Empty(t, lister.calls)
		})
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input    string
		expected Mode
		wantErr  bool
	}{
		{input: "posts", expected: ModeAuthored},
		{input: "likes", expected: ModeLiked},
		{input: "feeds", expected: ModeNamedFeed},
		{input: "reposts", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestRequestDir(t *testing.T) {
	req := &Request{Account: "alice.bsky.social", Mode: ModeLiked}
	assert.Equal(t, "alice.bsky.social_likes", req.Dir())
}
