package chessclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/cheese-chess/pkg/chessdto"
)

// HeaderProvider supplies extra headers for every request.
type HeaderProvider func() map[string]string

// Client talks to the chess HTTP API and its websocket event feed.
type Client struct {
	baseURL   string
	eventsURL string
	http      *fasthttp.Client
	headers   HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// WithEventsURL sets the websocket base URL ("ws://host:8081").
func WithEventsURL(u string) Option {
	return func(c *Client) { c.eventsURL = strings.TrimRight(u, "/") }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 30 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 64},
		defaultTimeout: 30 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, fasthttp.MethodGet, "/healthz", nil, nil, true)
}

func (c *Client) StartGame(ctx context.Context, req chessdto.StartGameRequest) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, "/v1/games", req, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Game(ctx context.Context, id string) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodGet, gamePath(id, ""), nil, &st, true); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) LegalMoves(ctx context.Context, id, square string) (*chessdto.LegalMoves, error) {
	var out chessdto.LegalMoves
	path := gamePath(id, "moves") + "?square=" + url.QueryEscape(square)
	if err := c.doJSON(ctx, fasthttp.MethodGet, path, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Play(ctx context.Context, id, move string) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "moves"), chessdto.PlayMoveRequest{Move: move}, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Hint(ctx context.Context, id string) (*chessdto.Hint, error) {
	var h chessdto.Hint
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "hint"), nil, &h, false); err != nil {
		return nil, err
	}
	return &h, nil
}

func (c *Client) Undo(ctx context.Context, id string, plies int) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPost, gamePath(id, "undo"), chessdto.UndoRequest{Plies: plies}, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) SetLevel(ctx context.Context, id string, level int) (*chessdto.SessionState, error) {
	var st chessdto.SessionState
	if err := c.doJSON(ctx, fasthttp.MethodPut, gamePath(id, "level"), chessdto.SetLevelRequest{Level: level}, &st, false); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) CloseGame(ctx context.Context, id string) error {
	return c.doJSON(ctx, fasthttp.MethodDelete, gamePath(id, ""), nil, nil, false)
}

func (c *Client) Preference(ctx context.Context, playerID string) (*chessdto.Preference, error) {
	var p chessdto.Preference
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/v1/players/"+url.PathEscape(playerID)+"/preference", nil, &p, true); err != nil {
		return nil, err
	}
	return &p, nil
}

func gamePath(id, sub string) string {
	p := "/v1/games/" + url.PathEscape(id)
	if sub != "" {
		p += "/" + sub
	}
	return p
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry && c.retryMax > 1 {
		attempts = c.retryMax
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
		} else if status := resp.StatusCode(); status < 200 || status >= 300 {
			lastErr = decodeError(status, resp.Body())
			if !shouldRetryStatus(status) {
				return lastErr
			}
		} else {
			if out != nil && len(resp.Body()) > 0 {
				if err := json.Unmarshal(resp.Body(), out); err != nil {
					return fmt.Errorf("decode response: %w", err)
				}
			}
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := c.sleepWithContext(ctx, backoffDuration(attempt)); err != nil {
			return lastErr
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

// decodeError prefers the server's DomainError body and falls back to a
// generic error carrying the status.
func decodeError(status int, body []byte) error {
	var de chessdto.DomainError
	if err := json.Unmarshal(body, &de); err == nil && de.Code != "" {
		return de
	}
	return fmt.Errorf("chess api error: status=%d body=%s", status, truncate(string(body), 512))
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	clientDL := time.Now().Add(c.defaultTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(clientDL) {
		return dl
	}
	return clientDL
}

func (c *Client) sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	attempt = min(max(attempt, 1), 6)
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
