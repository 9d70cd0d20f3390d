// Package origin provides the client for the upstream webhook endpoints that
// back the feed. Every call is a JSON POST, and every request carries the
// header that bypasses the tunnel provider's interstitial warning page.
package origin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// bypassHeader skips the interstitial warning page the tunnel provider serves
// to unrecognized clients. Without it the endpoints answer with HTML.
const bypassHeader = "ngrok-skip-browser-warning"

// RawPost is a post record exactly as the origin returns it. The Imagem field
// is sometimes double-encoded as a JSON string by the origin; callers are
// expected to unwrap it before use.
type RawPost struct {
	ID        int64  `json:"id"`
	Imagem    string `json:"imagem"`
	Titulo    string `json:"titulo"`
	Descricao string `json:"descrição"`
}

// CreatePostRequest carries a new post to the origin. Exactly one of Imagem
// and Video is set, both as base64 data URIs.
type CreatePostRequest struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Caption  string `json:"caption"`
	Imagem   string `json:"imagem,omitempty"`
	Video    string `json:"video,omitempty"`
}

// Client is the boundary to the origin webhooks. Implementations must treat
// any non-2xx status as failure and must not retry.
type Client interface {
	// FetchPosts retrieves all posts belonging to the bare (sigil-less) username.
	FetchPosts(ctx context.Context, username string) ([]RawPost, error)

	// NotifyLike reports a like delta (+1 or -1) for a post. Best-effort:
	// the response body is ignored beyond the status check.
	NotifyLike(ctx context.Context, postID, username string, delta int) error

	// CreatePost publishes a new post. The response body is ignored beyond
	// the status check.
	CreatePost(ctx context.Context, req CreatePostRequest) error

	// DeletePost removes a post by id.
	DeletePost(ctx context.Context, postID string) error
}

// Endpoints holds the four webhook URLs the client talks to.
type Endpoints struct {
	FetchPosts string
	NotifyLike string
	CreatePost string
	DeletePost string
}

type httpClient struct {
	http      *http.Client
	endpoints Endpoints
}

// NewClient creates an origin client with the given endpoints and request
// timeout. A zero timeout falls back to 15 seconds; the origin itself defines
// none, so the client imposes one.
func NewClient(endpoints Endpoints, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		http:      &http.Client{Timeout: timeout},
		endpoints: endpoints,
	}
}

func (c *httpClient) FetchPosts(ctx context.Context, username string) ([]RawPost, error) {
	body := map[string]string{"username": username}

	resp, err := c.post(ctx, c.endpoints.FetchPosts, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: fetch posts returned status %d", ErrOriginUnavailable, resp.StatusCode)
	}

	// The origin occasionally answers with an HTML interstitial despite the
	// bypass header. Reject anything that is not JSON before decoding.
	if !isJSONContentType(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrBadPayload, resp.Header.Get("Content-Type"))
	}

	var posts []RawPost
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&posts); err != nil {
		return nil, fmt.Errorf("%w: decoding post list: %v", ErrBadPayload, err)
	}

	return posts, nil
}

func (c *httpClient) NotifyLike(ctx context.Context, postID, username string, delta int) error {
	body := map[string]any{
		"id do post": postID,
		"username":   username,
		"curtidas":   delta,
	}
	return c.fireAndCheck(ctx, c.endpoints.NotifyLike, body, "notify like")
}

func (c *httpClient) CreatePost(ctx context.Context, req CreatePostRequest) error {
	return c.fireAndCheck(ctx, c.endpoints.CreatePost, req, "create post")
}

func (c *httpClient) DeletePost(ctx context.Context, postID string) error {
	body := map[string]string{"id": postID}
	return c.fireAndCheck(ctx, c.endpoints.DeletePost, body, "delete post")
}

// fireAndCheck POSTs the body and checks only the response status.
func (c *httpClient) fireAndCheck(ctx context.Context, url string, body any, operation string) error {
	resp, err := c.post(ctx, url, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned status %d", ErrOriginUnavailable, operation, resp.StatusCode)
	}

	return nil
}

func (c *httpClient) post(ctx context.Context, url string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(bypassHeader, "true")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrOriginUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrOriginUnavailable, err)
	}

	return resp, nil
}

// maxResponseBytes bounds how much of an origin response is read into memory.
const maxResponseBytes = 8 * 1024 * 1024

func isJSONContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
