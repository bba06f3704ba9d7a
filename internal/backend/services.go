package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"elite-decor-web/internal/models"
)

func (c *Client) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	q := url.Values{}
	if filter.SearchText != "" {
		q.Set("search", filter.SearchText)
	}
	if filter.Category != "" {
		q.Set("category", string(filter.Category))
	}
	if filter.Sort != models.SortNone {
		q.Set("sort", string(filter.Sort))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}

	var services []models.Service
	if err := c.get(ctx, call{endpoint: "GET /services", path: "/services", query: q}, &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

func (c *Client) GetService(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	err := c.get(ctx, call{
		endpoint: "GET /services/:id",
		path:     "/services/" + pathEscape(id),
		resource: "service",
	}, &service)
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}
	return &service, nil
}

func (c *Client) CreateService(ctx context.Context, in models.ServiceInput) error {
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "POST /services",
		path:     "/services",
		body:     in,
	}, nil)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

func (c *Client) UpdateService(ctx context.Context, id string, in models.ServiceInput) error {
	err := c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "PUT /services/:id",
		path:     "/services/" + pathEscape(id),
		body:     in,
		resource: "service",
	}, nil)
	if err != nil {
		return fmt.Errorf("update service %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteService(ctx context.Context, id string) error {
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "DELETE /services/:id",
		path:     "/services/" + pathEscape(id),
		resource: "service",
	}, nil)
	if err != nil {
		return fmt.Errorf("delete service %s: %w", id, err)
	}
	return nil
}
