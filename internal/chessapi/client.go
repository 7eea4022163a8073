package chessapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/park285/cheese-board/pkg/chessdto"
	"github.com/valyala/fasthttp"
)

const (
	pathAllGames  = "/chess/v1/allgames/"
	pathNewGame   = "/chess/v1/newgame"
	pathGameState = "/chess/v1/gamestate"
	pathMakeMove  = "/chess/v1/makemove"
)

var ErrEmptyBaseURL = errors.New("chess server base url is required")

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// Client talks to the authoritative chess server.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
	clientID       string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
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

func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}
	c := &Client{
		baseURL:        baseURL,
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
		clientID:       uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// NewGame asks the server for a game to play. Not retried: every call may
// create a game on the server.
func (c *Client) NewGame(ctx context.Context) (*chessdto.NewGameResponse, error) {
	var resp chessdto.NewGameResponse
	if err := c.doJSON(ctx, fasthttp.MethodGet, pathNewGame, nil, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GameState fetches the full board snapshot of a game.
func (c *Client) GameState(ctx context.Context, gameID string) (*chessdto.GameState, error) {
	q := url.Values{"gameId": {gameID}}
	var st chessdto.GameState
	if err := c.doJSON(ctx, fasthttp.MethodGet, pathGameState+"?"+q.Encode(), nil, &st, true); err != nil {
		return nil, err
	}
	if st.Positions == nil {
		st.Positions = map[string]string{}
	}
	return &st, nil
}

// MakeMove submits a move. The response body is not interpreted.
func (c *Client) MakeMove(ctx context.Context, req chessdto.MoveRequest) error {
	return c.doJSON(ctx, fasthttp.MethodPost, pathMakeMove, req, nil, false)
}

// AllGames lists the games a player takes part in.
func (c *Client) AllGames(ctx context.Context, playerID string) ([]chessdto.GameSummary, error) {
	q := url.Values{"playerId": {playerID}}
	var out []chessdto.GameSummary
	if err := c.doJSON(ctx, fasthttp.MethodGet, pathAllGames+"?"+q.Encode(), nil, &out, true); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch downloads a raw resource relative to the base url (piece images).
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	err := c.do(ctx, fasthttp.MethodGet, "/"+strings.TrimLeft(path, "/"), nil, true, func(resp *fasthttp.Response) error {
		body = append([]byte(nil), resp.Body()...)
		return nil
	})
	return body, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any, retry bool) error {
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		payload = b
	}
	return c.do(ctx, method, path, payload, retry, func(resp *fasthttp.Response) error {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, retry bool, onOK func(*fasthttp.Response) error) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.Set("X-Client-Id", c.clientID)
	if payload != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req.Header.Set("X-Request-Id", uuid.NewString())
		deadline := c.computeDeadline(ctx)
		err := c.http.DoDeadline(req, resp, deadline)
		if err != nil {
			if attempt == attempts || !retry {
				return fmt.Errorf("request %s %s failed: %w", method, path, err)
			}
			lastErr = err
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			apiErr := &chessdto.APIError{Status: status, Path: path, Body: truncate(string(resp.Body()), 512)}
			if attempt == attempts || !retry || !apiErr.Retryable() {
				return apiErr
			}
			lastErr = apiErr
			if sleepErr := c.sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		return onOK(resp)
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
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
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
