package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

// BookingService covers the customer side of the booking lifecycle.
type BookingService struct {
	backend BookingBackend
	logger  zerolog.Logger
	now     func() time.Time
}

func NewBookingService(backend BookingBackend, logger zerolog.Logger) *BookingService {
	return &BookingService{backend: backend, logger: logger, now: time.Now}
}

// WithClock replaces the clock; tests only.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// CreateBooking books serviceID for identity. date is YYYY-MM-DD and must
// not be in the past.
func (s *BookingService) CreateBooking(ctx context.Context, identity *models.Identity, serviceID, date, location string) (*models.Booking, error) {
	if identity == nil {
		return nil, apperr.ErrUnauthenticated
	}
	location = strings.TrimSpace(location)
	if strings.TrimSpace(date) == "" {
		return nil, apperr.Validation("bookingDate", "booking date is required")
	}
	bookingDate, err := models.ParseDate(date)
	if err != nil {
		return nil, apperr.Validation("bookingDate", "booking date must be a valid date")
	}
	if bookingDate.Before(models.DateOf(s.now())) {
		return nil, apperr.Validation("bookingDate", "booking date cannot be in the past")
	}
	if location == "" {
		return nil, apperr.Validation("location", "location is required")
	}

	service, err := s.backend.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	booking, err := s.backend.CreateBooking(ctx, models.BookingDraft{
		UserEmail:     identity.Email,
		UserName:      identity.DisplayName,
		ServiceID:     service.ID,
		ServiceName:   service.Name,
		BookingDate:   bookingDate,
		Location:      location,
		TotalCost:     service.Cost,
		Status:        models.BookingPending,
		PaymentStatus: "pending",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("booking_id", booking.ID).Str("service_id", service.ID).Str("email", identity.Email).Msg("booking created")
	return booking, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, email string) ([]models.Booking, error) {
	if email == "" {
		return nil, apperr.ErrUnauthenticated
	}
	bookings, err := s.backend.ListUserBookings(ctx, email)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// FindBooking returns one of email's bookings.
func (s *BookingService) FindBooking(ctx context.Context, email, id string) (models.Booking, error) {
	bookings, err := s.ListMyBookings(ctx, email)
	if err != nil {
		return models.Booking{}, err
	}
	for _, b := range bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Booking{}, apperr.NotFound("booking")
}

// CancelBooking deletes a pending, unpaid booking owned by email once the
// user has confirmed.
func (s *BookingService) CancelBooking(ctx context.Context, email string, booking models.Booking, confirmed bool) error {
	if !confirmed {
		return apperr.ErrConfirmationRequired
	}
	if !strings.EqualFold(booking.UserEmail, email) {
		return apperr.ErrNotOwner
	}
	if !booking.Cancellable() {
		return apperr.ErrNotCancellable
	}
	if err := s.backend.DeleteBooking(ctx, booking.ID); err != nil {
		return err
	}
	s.logger.Info().Str("booking_id", booking.ID).Str("email", email).Msg("booking cancelled")
	return nil
}
