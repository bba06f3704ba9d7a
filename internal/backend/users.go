package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"elite-decor-web/internal/models"
)

func (c *Client) GetUser(ctx context.Context, email string) (*models.RoleAssignment, error) {
	var user models.RoleAssignment
	err := c.get(ctx, call{
		endpoint: "GET /users/:email",
		path:     "/users/" + pathEscape(email),
		resource: "user",
	}, &user)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context, role models.Role, searchText string) ([]models.RoleAssignment, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", string(role))
	}
	if searchText != "" {
		q.Set("searchText", searchText)
	}

	var users []models.RoleAssignment
	if err := c.get(ctx, call{endpoint: "GET /admin/users", path: "/admin/users", query: q}, &users); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (c *Client) MakeDecorator(ctx context.Context, email string) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		endpoint: "PATCH /admin/users/:email/make-decorator",
		path:     "/admin/users/" + pathEscape(email) + "/make-decorator",
		resource: "user",
	}, nil)
	if err != nil {
		return fmt.Errorf("make decorator %s: %w", email, err)
	}
	return nil
}

func (c *Client) SetDecoratorStatus(ctx context.Context, email string, status models.DecoratorStatus) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		endpoint: "PATCH /admin/users/:email/demote-decorator",
		path:     "/admin/users/" + pathEscape(email) + "/demote-decorator",
		body:     map[string]string{"status": string(status)},
		resource: "user",
	}, nil)
	if err != nil {
		return fmt.Errorf("set decorator status %s: %w", email, err)
	}
	return nil
}

// ListTopDecorators returns the best rated decorators, at most limit.
func (c *Client) ListTopDecorators(ctx context.Context, limit int) ([]models.RoleAssignment, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var decorators []models.RoleAssignment
	err := c.get(ctx, call{endpoint: "GET /decorators/top", path: "/decorators/top", query: q}, &decorators)
	if err != nil {
		return nil, fmt.Errorf("list top decorators: %w", err)
	}
	return decorators, nil
}

func (c *Client) ListActiveDecorators(ctx context.Context) ([]models.RoleAssignment, error) {
	var decorators []models.RoleAssignment
	err := c.get(ctx, call{endpoint: "GET /admin/decorators/active", path: "/admin/decorators/active"}, &decorators)
	if err != nil {
		return nil, fmt.Errorf("list active decorators: %w", err)
	}
	return decorators, nil
}
