package api

import (
	"context"
	"fmt"
	"net/http"

	"delrio-stay/internal/model"
)

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) error {
	call, err := jsonRequest(http.MethodPost, "/auth/register", req, false)
	if err != nil {
		return err
	}
	return c.do(ctx, call, nil)
}

// Login exchanges credentials for a token. The token itself is not checked
// here; a success without one is reported as model.ErrNoToken.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResult, error) {
	call, err := jsonRequest(http.MethodPost, "/auth/login", req, false)
	if err != nil {
		return model.LoginResult{}, err
	}

	var result model.LoginResult
	if err := c.do(ctx, call, &result); err != nil {
		return model.LoginResult{}, err
	}
	if result.Token == "" {
		return model.LoginResult{}, fmt.Errorf("login %s: %w", req.Email, model.ErrNoToken)
	}
	return result, nil
}
