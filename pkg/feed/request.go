package feed

import "fmt"

// Mode selects which remote feed-listing capability is invoked
type Mode int

const (
	// ModeAuthored fetches posts authored by the account
	ModeAuthored Mode = iota
	// ModeLiked fetches posts the account has liked
	ModeLiked
	// ModeNamedFeed fetches a curated feed published by the account
	ModeNamedFeed
)

// String returns the directory-naming form of the mode
func (m Mode) String() string {
	switch m {
	case ModeAuthored:
		return "posts"
	case ModeLiked:
		return "likes"
	case ModeNamedFeed:
		return "feeds"
	default:
		return "unknown"
	}
}

// ParseMode converts the CLI form of a mode to its Mode value
func ParseMode(s string) (Mode, error) {
	switch s {
	case "posts":
		return ModeAuthored, nil
	case "likes":
		return ModeLiked, nil
	case "feeds":
		return ModeNamedFeed, nil
	default:
		return 0, fmt.Errorf("feed type must be either 'likes', 'posts', or 'feeds', got %q", s)
	}
}

// Unbounded requests every post the account has. It must be resolved
// to a concrete count before the paginator runs.
const Unbounded = -1

// Request describes one pipeline run: whose feed, which mode, and how
// many posts. It replaces the per-run globals of older revisions so
// every component receives its inputs explicitly.
type Request struct {
	// Account is the handle, used only for directory naming
	Account string
	// DID is the resolved account identifier used in API calls
	DID string
	// Mode selects authored posts, likes, or a named feed
	Mode Mode
	// FeedURI is the at:// URI of the curated feed (ModeNamedFeed only)
	FeedURI string
	// Limit is the target post count; never Unbounded by the time the
	// paginator sees it
	Limit int
}

// Dir returns the output directory name for this request
func (r *Request) Dir() string {
	return fmt.Sprintf("%s_%s", r.Account, r.Mode)
}

// Validate checks the request invariants
func (r *Request) Validate() error {
	if r.Account == "" {
		return fmt.Errorf("account is required")
	}
	if r.DID == "" {
		return fmt.Errorf("account DID is required")
	}
	if r.Mode == ModeNamedFeed && r.FeedURI == "" {
		return fmt.Errorf("feed URI is required for feed mode")
	}
	if r.Limit == Unbounded {
		return fmt.Errorf("unbounded request must be resolved to a post count")
	}
	if r.Limit < 1 {
		return fmt.Errorf("post count must be at least 1, got %d", r.Limit)
	}
	return nil
}
