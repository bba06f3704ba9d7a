package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID            string          `json:"_id"`
	BookingID     string          `json:"bookingId"`
	ServiceName   string          `json:"serviceName"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt,omitempty"`
}

type CheckoutSession struct {
	URL string `json:"url"`
}

// VerifiedPayment is the recorded outcome of verifying one checkout return.
type VerifiedPayment struct {
	BookingID     string `json:"bookingId"`
	SessionID     string `json:"sessionId"`
	TransactionID string `json:"transactionId,omitempty"`
	Paid          bool   `json:"paid"`
	Message       string `json:"message,omitempty"`
}

type Earnings struct {
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	TotalProjects     int             `json:"totalProjects"`
	CompletedBookings []Booking       `json:"completedBookings"`
}
