package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"elite-decor-web/internal/models"
)

func (c *Client) CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error) {
	var created models.Booking
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "POST /bookings",
		path:     "/bookings",
		body:     draft,
	}, &created)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &created, nil
}

func (c *Client) ListUserBookings(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.get(ctx, call{
		endpoint: "GET /bookings/user/:email",
		path:     "/bookings/user/" + pathEscape(email),
	}, &bookings)
	if err != nil {
		return nil, fmt.Errorf("list bookings for %s: %w", email, err)
	}
	return bookings, nil
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	err := c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: "DELETE /bookings/:id",
		path:     "/bookings/" + pathEscape(id),
		resource: "booking",
	}, nil)
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	return nil
}

func (c *Client) ListAllBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	q := url.Values{}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Paid != nil {
		q.Set("paid", strconv.FormatBool(*filter.Paid))
	}

	var bookings []models.Booking
	if err := c.get(ctx, call{endpoint: "GET /admin/bookings", path: "/admin/bookings", query: q}, &bookings); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

func (c *Client) AssignDecorator(ctx context.Context, bookingID, decoratorEmail, decoratorName string) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		endpoint: "PATCH /admin/bookings/:id/assign-decorator",
		path:     "/admin/bookings/" + pathEscape(bookingID) + "/assign-decorator",
		body: map[string]string{
			"decoratorEmail": decoratorEmail,
			"decoratorName":  decoratorName,
		},
		resource: "booking",
	}, nil)
	if err != nil {
		return fmt.Errorf("assign decorator to %s: %w", bookingID, err)
	}
	return nil
}

func (c *Client) ListDecoratorBookings(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := c.get(ctx, call{
		endpoint: "GET /decorator/bookings/:email",
		path:     "/decorator/bookings/" + pathEscape(email),
	}, &bookings)
	if err != nil {
		return nil, fmt.Errorf("list projects for %s: %w", email, err)
	}
	return bookings, nil
}

func (c *Client) UpdateProjectStatus(ctx context.Context, bookingID string, status models.ProjectStatus) error {
	err := c.do(ctx, call{
		method:   http.MethodPatch,
		endpoint: "PATCH /decorator/bookings/:id/status",
		path:     "/decorator/bookings/" + pathEscape(bookingID) + "/status",
		body:     map[string]string{"projectStatus": string(status)},
		resource: "booking",
	}, nil)
	if err != nil {
		return fmt.Errorf("update project status %s: %w", bookingID, err)
	}
	return nil
}

func (c *Client) GetEarnings(ctx context.Context, email string) (*models.Earnings, error) {
	var earnings models.Earnings
	err := c.get(ctx, call{
		endpoint: "GET /decorator/earnings/:email",
		path:     "/decorator/earnings/" + pathEscape(email),
	}, &earnings)
	if err != nil {
		return nil, fmt.Errorf("get earnings for %s: %w", email, err)
	}
	return &earnings, nil
}
