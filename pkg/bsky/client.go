package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bskygrab/pkg/errors"
	"bskygrab/pkg/logger"
	"bskygrab/pkg/retry"
)

// Client is an XRPC client for a Bluesky PDS. All feed and identity
// calls go through it; media downloads reuse its pooled transport.
type Client struct {
	httpClient *http.Client
	serviceURL string
	accessJwt  string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
	logger     logger.Logger
}

// NewClient creates a new Bluesky client. retryDelay is the base of
// the exponential backoff between retried requests.
func NewClient(serviceURL string, timeout, retryDelay time.Duration, maxRetries int, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		serviceURL: serviceURL,
		userAgent:  "bskygrab/1.5",
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     log,
	}
}

// ServiceURL returns the configured PDS base URL
func (c *Client) ServiceURL() string {
	return c.serviceURL
}

// SetAccessToken installs an access JWT for authenticated calls
func (c *Client) SetAccessToken(token string) {
	c.accessJwt = token
}

// Login creates a session with the given identifier and app password
// and installs the returned access token on the client.
func (c *Client) Login(ctx context.Context, identifier, appPassword string) (*SessionResponse, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   appPassword,
	}

	var session SessionResponse
	if err := c.postJSON(ctx, xrpcURL(c.serviceURL, ProcCreateSession, nil), body, &session); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	c.accessJwt = session.AccessJwt

	c.logger.InfoWithFields("session created", map[string]interface{}{
		"handle": session.Handle,
		"did":    session.DID,
	})

	return &session, nil
}

// ResolveHandle resolves a handle to its DID
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	var resp ResolveHandleResponse
	if err := c.getJSON(ctx, ResolveHandleURL(c.serviceURL, handle), &resp); err != nil {
		return "", fmt.Errorf("failed to resolve handle %q: %w", handle, err)
	}
	return resp.DID, nil
}

// GetProfile fetches an actor's profile
func (c *Client) GetProfile(ctx context.Context, actor string) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, GetProfileURL(c.serviceURL, actor), &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %q: %w", actor, err)
	}
	return &profile, nil
}

// GetAuthorFeed fetches one page of an actor's authored posts
func (c *Client) GetAuthorFeed(ctx context.Context, actor string, limit int, cursor string) (*FeedResponse, error) {
	return c.getFeedPage(ctx, GetAuthorFeedURL(c.serviceURL, actor, limit, cursor))
}

// GetActorLikes fetches one page of an actor's liked posts
func (c *Client) GetActorLikes(ctx context.Context, actor string, limit int, cursor string) (*FeedResponse, error) {
	return c.getFeedPage(ctx, GetActorLikesURL(c.serviceURL, actor, limit, cursor))
}

// GetFeed fetches one page of a curated feed by its at:// URI
func (c *Client) GetFeed(ctx context.Context, feedURI string, limit int, cursor string) (*FeedResponse, error) {
	return c.getFeedPage(ctx, GetFeedURL(c.serviceURL, feedURI, limit, cursor))
}

// ListActorFeeds lists the feed generators published by an actor
func (c *Client) ListActorFeeds(ctx context.Context, actor string) (*ActorFeedsResponse, error) {
	var resp ActorFeedsResponse
	if err := c.getJSON(ctx, GetActorFeedsURL(c.serviceURL, actor), &resp); err != nil {
		return nil, fmt.Errorf("failed to list feeds for %q: %w", actor, err)
	}
	return &resp, nil
}

func (c *Client) getFeedPage(ctx context.Context, url string) (*FeedResponse, error) {
	var resp FeedResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Fetch performs a streaming GET against an arbitrary URL. The caller
// owns the response and must close its body. Transport failures return
// a typed network error; non-2xx responses are returned as-is so the
// caller can record the status.
func (c *Client) Fetch(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}
	return resp, nil
}

// doRequest performs an HTTP request with auth and logging
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.accessJwt != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessJwt)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// doRequestWithRetry retries transient failures with exponential
// backoff and jitter. Non-retryable statuses are returned as-is for
// the caller to map. The request body, if any, must be rebuildable
// via GetBody.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	attempt := 0
	return retry.DoWithResult(func() (*http.Response, error) {
		attempt++
		if attempt > 1 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}

		resp, err := c.doRequest(req)
		if err != nil {
			return nil, err
		}

		if errors.IsRetryableStatusCode(resp.StatusCode) {
			resp.Body.Close()
			return nil, errors.FromStatusCode(resp.StatusCode)
		}

		return resp, nil
	}, &retry.Config{
		MaxAttempts: c.maxRetries + 1,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    c.retryDelay,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: req.Context(),
		Logger:  c.logger,
	})
}

// getJSON performs a GET request and decodes the JSON response
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	return c.decodeResponse(req, target)
}

// postJSON performs a POST request with a JSON body and decodes the response
func (c *Client) postJSON(ctx context.Context, url string, body, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.New(errors.ErrorTypeParsing, 0, "failed to encode request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.decodeResponse(req, target)
}

func (c *Client) decodeResponse(req *http.Request, target interface{}) error {
	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.FromStatusCode(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		preview := string(data)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          req.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}
