package apiclient

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"hospital-portal/internal/models"
)

// Login exchanges credentials for a token. Backend messages are returned verbatim.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var out models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the backend the token is being dropped. Failures are logged
// and swallowed; the local session is cleared regardless.
func (c *Client) Logout(ctx context.Context) {
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		c.logger.Warn("logout request failed", zap.Error(err))
	}
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*models.UserRecord, error) {
	var out models.MeResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}
