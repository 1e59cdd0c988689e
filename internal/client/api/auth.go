package api

import (
	"context"
	"fmt"

	"github.com/maintly/fieldsync/pkg/api"
)

// Login выполняет аутентификацию техника
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.SessionResponse, error) {
	var resp api.SessionResponse
	err := c.Do(ctx, "POST", "/api/v1/auth/login/", req, &resp, WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает refresh token на новую пару токенов.
// Вызывается только координатором refresh; всегда без Authorization.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	req := api.RefreshRequest{RefreshToken: refreshToken}
	err := c.Do(ctx, "POST", "/api/v1/auth/refresh/", req, &resp, WithoutAuth())
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout уведомляет сервер о завершении сессии (best effort)
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Do(ctx, "POST", "/api/v1/auth/logout/", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}
