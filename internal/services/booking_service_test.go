package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

var bookingNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newBookingService(backend *mockBackend) *services.BookingService {
	return services.NewBookingService(backend, zerolog.Nop()).WithClock(func() time.Time { return bookingNow })
}

func TestCreateBooking_RequiresIdentity(t *testing.T) {
	backend := &mockBackend{}

	_, err := newBookingService(backend).CreateBooking(context.Background(), nil, "s1", "2026-12-01", "Dhaka")

	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	backend.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBooking_FieldValidation(t *testing.T) {
	ava := &models.Identity{Email: "ava@example.com"}
	tests := []struct {
		name, date, location, field string
	}{
		{"missing date", "", "Dhaka", "bookingDate"},
		{"bad date", "12/01/2026", "Dhaka", "bookingDate"},
		{"past date", "2026-10-15", "Dhaka", "bookingDate"},
		{"missing location", "2026-12-01", "   ", "location"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newBookingService(&mockBackend{}).CreateBooking(context.Background(), ava, "s1", tt.date, tt.location)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, tt.field, apperr.FieldOf(err))
		})
	}
}

func TestCreateBooking_TodayIsAllowed(t *testing.T) {
	backend := &mockBackend{}
	backend.On("GetService", mock.Anything, "s1").Return(&models.Service{ID: "s1", Name: "Home Refresh", Cost: decimal.NewFromInt(300)}, nil)
	backend.On("CreateBooking", mock.Anything, mock.MatchedBy(func(d models.BookingDraft) bool {
		return d.BookingDate.String() == "2026-10-16" &&
			d.ServiceName == "Home Refresh" &&
			d.TotalCost.Equal(decimal.NewFromInt(300)) &&
			d.Status == models.BookingPending &&
			d.UserEmail == "ava@example.com"
	})).Return(&models.Booking{ID: "b1", Status: models.BookingPending}, nil)

	b, err := newBookingService(backend).CreateBooking(context.Background(), &models.Identity{Email: "ava@example.com"}, "s1", "2026-10-16", "Dhaka")

	require.NoError(t, err)
	assert.Equal(t, "b1", b.ID)
	backend.AssertExpectations(t)
}

func TestCancelBooking(t *testing.T) {
	pending := models.Booking{ID: "b1", UserEmail: "ava@example.com", Status: models.BookingPending}
	paid := pending
	paid.Paid = true

	tests := []struct {
		name      string
		email     string
		booking   models.Booking
		confirmed bool
		want      error
	}{
		{"unconfirmed", "ava@example.com", pending, false, apperr.ErrConfirmationRequired},
		{"not owner", "bob@example.com", pending, true, apperr.ErrNotOwner},
		{"paid", "ava@example.com", paid, true, apperr.ErrNotCancellable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{}
			err := newBookingService(backend).CancelBooking(context.Background(), tt.email, tt.booking, tt.confirmed)
			assert.ErrorIs(t, err, tt.want)
			backend.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
		})
	}
}

// A user cancels a pending booking; the list no longer contains it.
func TestCancelBooking_RemovesFromList(t *testing.T) {
	backend := &mockBackend{}
	b1 := models.Booking{ID: "b1", UserEmail: "ava@example.com", Status: models.BookingPending}
	backend.On("DeleteBooking", mock.Anything, "b1").Return(nil)
	backend.On("ListUserBookings", mock.Anything, "ava@example.com").Return([]models.Booking{}, nil)
	svc := newBookingService(backend)

	require.NoError(t, svc.CancelBooking(context.Background(), "ava@example.com", b1, true))
	list, err := svc.ListMyBookings(context.Background(), "ava@example.com")

	require.NoError(t, err)
	assert.Empty(t, list)
	backend.AssertCalled(t, "DeleteBooking", mock.Anything, "b1")
}

func TestFindBooking_NotFound(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ListUserBookings", mock.Anything, "ava@example.com").Return([]models.Booking{{ID: "b1"}}, nil)

	_, err := newBookingService(backend).FindBooking(context.Background(), "ava@example.com", "b2")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
