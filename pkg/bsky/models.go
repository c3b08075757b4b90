package bsky

import "strings"

// Embed type identifiers as they appear in the "$type" field of feed views
const (
	EmbedTypeImages          = "app.bsky.embed.images#view"
	EmbedTypeVideo           = "app.bsky.embed.video#view"
	EmbedTypeRecordWithMedia = "app.bsky.embed.recordWithMedia#view"
)

// SessionResponse is the response from com.atproto.server.createSession
type SessionResponse struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

// ResolveHandleResponse is the response from com.atproto.identity.resolveHandle
type ResolveHandleResponse struct {
	DID string `json:"did"`
}

// Profile is the response from app.bsky.actor.getProfile
type Profile struct {
	DID         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	PostsCount  int    `json:"postsCount"`
}

// FeedResponse is the shared response shape of the feed-listing endpoints
// (getAuthorFeed, getActorLikes, getFeed): one page of items plus an
// opaque cursor. An empty cursor marks the end of the feed.
type FeedResponse struct {
	Feed   []FeedItem `json:"feed"`
	Cursor string     `json:"cursor"`
}

// FeedItem wraps a single post record in a feed page
type FeedItem struct {
	Post Post `json:"post"`
}

// Post represents a Bluesky post with its hydrated embed view
type Post struct {
	URI    string `json:"uri"`
	CID    string `json:"cid"`
	Record Record `json:"record"`
	Embed  *Embed `json:"embed,omitempty"`
}

// Record holds the original post record fields the downloader needs
type Record struct {
	CreatedAt string `json:"createdAt"`
	Text      string `json:"text"`
}

// Embed is the hydrated embed view attached to a post. Only image and
// video embeds carry media; all other embed types are ignored.
type Embed struct {
	Type     string      `json:"$type"`
	Images   []ImageView `json:"images,omitempty"`
	Playlist string      `json:"playlist,omitempty"`
	// Media carries the inner embed of a recordWithMedia view
	Media *Embed `json:"media,omitempty"`
}

// ImageView describes a single embedded image
type ImageView struct {
	Thumb    string `json:"thumb"`
	Fullsize string `json:"fullsize"`
	Alt      string `json:"alt"`
}

// MediaEmbed unwraps recordWithMedia views and returns the embed that
// actually carries images or a playlist, or nil if there is none.
func (e *Embed) MediaEmbed() *Embed {
	if e == nil {
		return nil
	}
	if e.Type == EmbedTypeRecordWithMedia && e.Media != nil {
		return e.Media.MediaEmbed()
	}
	if len(e.Images) > 0 || e.Playlist != "" {
		return e
	}
	return nil
}

// HasMedia reports whether the post carries downloadable media
func (p *Post) HasMedia() bool {
	return p.Embed.MediaEmbed() != nil
}

// RKey returns the record key, the last path segment of the post's
// at:// URI. It is unique per post within a repository.
func (p *Post) RKey() string {
	idx := strings.LastIndex(p.URI, "/")
	if idx < 0 {
		return p.URI
	}
	return p.URI[idx+1:]
}

// GeneratorView describes a feed generator from app.bsky.feed.getActorFeeds
type GeneratorView struct {
	URI         string `json:"uri"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// ActorFeedsResponse is the response from app.bsky.feed.getActorFeeds
type ActorFeedsResponse struct {
	Feeds  []GeneratorView `json:"feeds"`
	Cursor string          `json:"cursor"`
}
