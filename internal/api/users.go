package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"delrio-stay/internal/model"
	"delrio-stay/pkg/apierror"
)

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	payload, err := c.send(ctx, request{method: http.MethodGet, path: "/users/all", auth: true})
	if err != nil {
		return nil, err
	}
	return decodeList[model.User](payload)
}

func (c *Client) GetUser(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + url.PathEscape(email), auth: true}, &user)
	if apierror.IsNotFound(err) {
		return model.User{}, fmt.Errorf("%w: %w", model.ErrUserNotFound, err)
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: fmt.Sprintf("/users/%d", id), auth: true}, nil)
}
