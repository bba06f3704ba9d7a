package backend

import (
	"context"
	"fmt"
	"net/http"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

func (c *Client) CreateCheckoutSession(ctx context.Context, booking models.Booking) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "POST /create-checkout-session",
		path:     "/create-checkout-session",
		body:     map[string]interface{}{"booking": booking},
	}, &session)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if session.URL == "" {
		return nil, apperr.Fetch("empty_checkout_url", "payment page unavailable, please try again", fmt.Errorf("checkout response has no url"))
	}
	return &session, nil
}

type verifyResponse struct {
	Success       *bool  `json:"success"`
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

// VerifyPayment confirms a checkout session with the backend. It is not
// retried: callers guard it with their own once-only ledger.
func (c *Client) VerifyPayment(ctx context.Context, sessionID, bookingID string) (*models.VerifiedPayment, error) {
	var resp verifyResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "POST /verify-payment",
		path:     "/verify-payment",
		body: map[string]string{
			"sessionId": sessionID,
			"bookingId": bookingID,
		},
		resource: "payment session",
	}, &resp)
	if err != nil {
		if k := apperr.KindOf(err); k == apperr.KindValidation || k == apperr.KindNotFound {
			return nil, apperr.Verification(apperr.MessageOf(err), err)
		}
		return nil, fmt.Errorf("verify payment %s: %w", bookingID, err)
	}
	if resp.Success != nil && !*resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "payment could not be verified"
		}
		return nil, apperr.Verification(msg, nil)
	}
	return &models.VerifiedPayment{
		BookingID:     bookingID,
		SessionID:     sessionID,
		TransactionID: resp.TransactionID,
		Paid:          true,
		Message:       resp.Message,
	}, nil
}

func (c *Client) ListUserPayments(ctx context.Context, email string) ([]models.Payment, error) {
	var payments []models.Payment
	err := c.get(ctx, call{
		endpoint: "GET /payments/user/:email",
		path:     "/payments/user/" + pathEscape(email),
	}, &payments)
	if err != nil {
		return nil, fmt.Errorf("list payments for %s: %w", email, err)
	}
	return payments, nil
}
