// Package bsky provides an XRPC client for a Bluesky PDS.
//
// This package includes:
//   - A configurable HTTP client with session auth and retry handling
//   - Type-safe models for feed, profile, and embed responses
//   - Helper functions for constructing XRPC query URLs
//   - A streaming Fetch for CDN media bodies
//
// Example usage:
//
//	client := bsky.NewClient(bsky.DefaultServiceURL, 30*time.Second, 2*time.Second, 3, nil)
//
//	// Authenticate with an app password
//	session, err := client.Login(ctx, "alice.bsky.social", appPassword)
//	if err != nil {
//	    // Handle auth failure
//	}
//
//	// Resolve the target account and page through its posts
//	did, err := client.ResolveHandle(ctx, "bob.bsky.social")
//	page, err := client.GetAuthorFeed(ctx, did, 100, "")
//	for _, item := range page.Feed {
//	    if item.Post.HasMedia() {
//	        // Extract and download the embedded media
//	    }
//	}
package bsky
