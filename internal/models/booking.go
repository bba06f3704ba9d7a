package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of a booking date.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time of day.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type ProjectStatus string

const (
	ProjectAssigned          ProjectStatus = "assigned"
	ProjectPlanning          ProjectStatus = "planning phase"
	ProjectMaterialsPrepared ProjectStatus = "materials prepared"
	ProjectOnTheWay          ProjectStatus = "on the way to venue"
	ProjectSetupInProgress   ProjectStatus = "setup in progress"
	ProjectCompleted         ProjectStatus = "completed"
)

// ProjectStatusSequence is the order a project moves through.
var ProjectStatusSequence = []ProjectStatus{
	ProjectAssigned,
	ProjectPlanning,
	ProjectMaterialsPrepared,
	ProjectOnTheWay,
	ProjectSetupInProgress,
	ProjectCompleted,
}

// Index returns the position of s in ProjectStatusSequence, or -1.
func (s ProjectStatus) Index() int {
	for i, known := range ProjectStatusSequence {
		if s == known {
			return i
		}
	}
	return -1
}

func (s ProjectStatus) Valid() bool { return s.Index() >= 0 }

// Booking is a user's reservation of a service.
type Booking struct {
	ID                     string          `json:"_id"`
	UserEmail              string          `json:"userEmail"`
	UserName               string          `json:"userName,omitempty"`
	ServiceID              string          `json:"serviceId"`
	ServiceName            string          `json:"serviceName"`
	BookingDate            Date            `json:"bookingDate"`
	Location               string          `json:"location"`
	TotalCost              decimal.Decimal `json:"totalCost"`
	Status                 BookingStatus   `json:"status"`
	Paid                   bool            `json:"paid"`
	TransactionID          string          `json:"transactionId,omitempty"`
	AssignedDecoratorEmail string          `json:"assignedDecoratorEmail,omitempty"`
	AssignedDecoratorName  string          `json:"assignedDecoratorName,omitempty"`
	ProjectStatus          ProjectStatus   `json:"projectStatus,omitempty"`
	CreatedAt              time.Time       `json:"createdAt,omitempty"`
}

func (b Booking) Assigned() bool { return b.AssignedDecoratorEmail != "" }

// CurrentProjectStatus treats an assigned booking without a recorded
// project status as freshly assigned.
func (b Booking) CurrentProjectStatus() ProjectStatus {
	if b.ProjectStatus == "" && b.Assigned() {
		return ProjectAssigned
	}
	return b.ProjectStatus
}

func (b Booking) Cancellable() bool {
	return b.Status == BookingPending && !b.Paid
}

func (b Booking) Payable() bool {
	return b.Status != BookingCancelled && !b.Paid
}

// BookingDraft is the body sent to create a booking.
type BookingDraft struct {
	UserEmail     string          `json:"userEmail"`
	UserName      string          `json:"userName"`
	ServiceID     string          `json:"serviceId"`
	ServiceName   string          `json:"serviceName"`
	BookingDate   Date            `json:"bookingDate"`
	Location      string          `json:"location"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus string          `json:"paymentStatus"`
}

type BookingFilter struct {
	Status BookingStatus `json:"status,omitempty"`
	Paid   *bool         `json:"paid,omitempty"`
}
