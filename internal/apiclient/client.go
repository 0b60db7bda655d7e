// Package apiclient talks to the hospital REST backend.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token for each request ("" for none).
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is a thin JSON client over resty. It never retries.
type Client struct {
	http   *resty.Client
	tokens TokenSource
	logger *zap.Logger

	mu             sync.RWMutex
	onUnauthorized []func()
}

// New creates a client rooted at baseURL (already including /api/v1).
func New(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	c := &Client{
		tokens: tokens,
		logger: logger,
	}

	c.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.attachToken).
		OnAfterResponse(c.observeResponse)

	return c
}

// OnUnauthorized registers fn to run once for every 401 response.
// The session store registers its Logout here.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

func (c *Client) attachToken(_ *resty.Client, req *resty.Request) error {
	if c.tokens == nil {
		return nil
	}
	if tok := c.tokens.Token(); tok != "" {
		req.SetAuthToken(tok)
	}
	return nil
}

func (c *Client) observeResponse(_ *resty.Client, resp *resty.Response) error {
	c.logger.Debug("api response",
		zap.String("method", resp.Request.Method),
		zap.String("url", resp.Request.URL),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", resp.Time()),
	)

	if resp.StatusCode() != http.StatusUnauthorized {
		return nil
	}

	c.logger.Info("401 unauthorized - token expired or invalid",
		zap.String("url", resp.Request.URL),
	)

	c.mu.RLock()
	observers := append([]func(){}, c.onUnauthorized...)
	c.mu.RUnlock()
	for _, fn := range observers {
		fn()
	}
	return nil
}

// do sends one request and decodes a 2xx JSON body into result (if non-nil).
// Non-2xx responses become *APIError; transport failures wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("api request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
	}

	if resp.IsError() {
		apiErr := parseError(resp.StatusCode(), resp.Body())
		if resp.StatusCode() != http.StatusNotFound {
			c.logger.Warn("api error response",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", apiErr.Status),
				zap.String("detail", apiErr.Message),
			)
		}
		return apiErr
	}

	if result == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// IsNetwork reports a transport-level failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
