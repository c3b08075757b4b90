package feed

import (
	"context"
	"fmt"

	"bskygrab/pkg/bsky"
	"bskygrab/pkg/logger"
)

// Lister is the remote feed-listing capability the paginator drives.
// *bsky.Client satisfies it.
type Lister interface {
	GetAuthorFeed(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error)
	GetActorLikes(ctx context.Context, actor string, limit int, cursor string) (*bsky.FeedResponse, error)
	GetFeed(ctx context.Context, feedURI string, limit int, cursor string) (*bsky.FeedResponse, error)
}

// Paginator accumulates feed items across cursor-driven pages
type Paginator struct {
	client Lister
	logger logger.Logger
}

// NewPaginator creates a paginator over the given feed-listing client
func NewPaginator(client Lister, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{client: client, logger: log}
}

// Fetch retrieves up to req.Limit feed items. Requests of at most one
// page are issued as a single call; larger requests paginate with the
// server cursor until the target is reached or the feed is exhausted.
// An exhausted feed yields a short result, not an error. Transport
// errors propagate to the caller unrecovered.
func (p *Paginator) Fetch(ctx context.Context, req *Request) ([]bsky.FeedItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Limit <= bsky.MaxPageLimit {
		resp, err := p.page(ctx, req, req.Limit, "")
		if err != nil {
			return nil, err
		}
		return resp.Feed, nil
	}

	var items []bsky.FeedItem
	cursor := ""
	fetched := 0
	pageNum := 0

	for fetched < req.Limit {
		limit := req.Limit - fetched
		if limit > bsky.MaxPageLimit {
			limit = bsky.MaxPageLimit
		}

		resp, err := p.page(ctx, req, limit, cursor)
		if err != nil {
			return nil, err
		}

		items = append(items, resp.Feed...)
		fetched += len(resp.Feed)
		cursor = resp.Cursor
		pageNum++

		logger.LogPage(req.Account, pageNum, len(resp.Feed), cursor)

		if cursor == "" {
			p.logger.InfoWithFields("feed exhausted", map[string]interface{}{
				"account": req.Account,
				"fetched": fetched,
			})
			break
		}

		// A server that keeps returning a cursor with no items would
		// otherwise loop forever.
		if len(resp.Feed) == 0 {
			p.logger.WarnWithFields("empty page with cursor, treating feed as exhausted", map[string]interface{}{
				"account": req.Account,
				"cursor":  cursor,
			})
			break
		}
	}

	return items, nil
}

// page issues one feed-listing call for the request's mode
func (p *Paginator) page(ctx context.Context, req *Request, limit int, cursor string) (*bsky.FeedResponse, error) {
	switch req.Mode {
	case ModeAuthored:
		return p.client.GetAuthorFeed(ctx, req.DID, limit, cursor)
	case ModeLiked:
		return p.client.GetActorLikes(ctx, req.DID, limit, cursor)
	case ModeNamedFeed:
		return p.client.GetFeed(ctx, req.FeedURI, limit, cursor)
	default:
		return nil, fmt.Errorf("unknown feed mode %d", req.Mode)
	}
}
