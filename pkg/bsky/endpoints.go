package bsky

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultServiceURL is the default PDS entryway
	DefaultServiceURL = "https://bsky.social"

	// XRPC method names used by the downloader
	ProcCreateSession = "com.atproto.server.createSession"
	ProcResolveHandle = "com.atproto.identity.resolveHandle"
	ProcGetProfile    = "app.bsky.actor.getProfile"
	ProcGetAuthorFeed = "app.bsky.feed.getAuthorFeed"
	ProcGetActorLikes = "app.bsky.feed.getActorLikes"
	ProcGetFeed       = "app.bsky.feed.getFeed"
	ProcGetActorFeeds = "app.bsky.feed.getActorFeeds"

	// MaxPageLimit is the largest page size the feed endpoints accept
	MaxPageLimit = 100
)

// xrpcURL constructs an XRPC query URL for the given method and parameters
func xrpcURL(base, method string, params url.Values) string {
	u := fmt.Sprintf("%s/xrpc/%s", base, method)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// ResolveHandleURL constructs the URL for resolving a handle to a DID
func ResolveHandleURL(base, handle string) string {
	params := url.Values{}
	params.Set("handle", handle)
	return xrpcURL(base, ProcResolveHandle, params)
}

// GetProfileURL constructs the URL for fetching an actor's profile
func GetProfileURL(base, actor string) string {
	params := url.Values{}
	params.Set("actor", actor)
	return xrpcURL(base, ProcGetProfile, params)
}

// feedParams builds the shared {limit, cursor} parameter set
func feedParams(limit int, cursor string) url.Values {
	if limit <= 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return params
}

// GetAuthorFeedURL constructs the URL for fetching an actor's authored posts
func GetAuthorFeedURL(base, actor string, limit int, cursor string) string {
	params := feedParams(limit, cursor)
	params.Set("actor", actor)
	return xrpcURL(base, ProcGetAuthorFeed, params)
}

// GetActorLikesURL constructs the URL for fetching an actor's liked posts
func GetActorLikesURL(base, actor string, limit int, cursor string) string {
	params := feedParams(limit, cursor)
	params.Set("actor", actor)
	return xrpcURL(base, ProcGetActorLikes, params)
}

// GetFeedURL constructs the URL for fetching a curated feed by its at:// URI
func GetFeedURL(base, feedURI string, limit int, cursor string) string {
	params := feedParams(limit, cursor)
	params.Set("feed", feedURI)
	return xrpcURL(base, ProcGetFeed, params)
}

// GetActorFeedsURL constructs the URL for listing an actor's feed generators
func GetActorFeedsURL(base, actor string) string {
	params := url.Values{}
	params.Set("actor", actor)
	return xrpcURL(base, ProcGetActorFeeds, params)
}
