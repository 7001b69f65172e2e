package apiclient

import (
	"context"

	"github.com/miniuni/miniuni-web/internal/model"
)

// Login exchanges credentials for a session via POST /auth/login.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a student account via POST /auth/signup.
func (c *Client) Signup(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	body := model.SignupRequest{
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleStudent,
	}
	var resp model.AuthResponse
	if err := c.Post(ctx, "/auth/signup", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes GET /health.
func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, "/health", nil)
}
