package services

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

// DecoratorService is the decorator dashboard: assigned projects, status
// updates and earnings.
type DecoratorService struct {
	backend DecoratorBackend
	policy  StatusPolicy
	logger  zerolog.Logger
}

func NewDecoratorService(backend DecoratorBackend, policy StatusPolicy, logger zerolog.Logger) *DecoratorService {
	return &DecoratorService{backend: backend, policy: policy, logger: logger}
}

func (s *DecoratorService) ListAssignedProjects(ctx context.Context, email string) ([]models.Booking, error) {
	if email == "" {
		return nil, apperr.ErrUnauthenticated
	}
	bookings, err := s.backend.ListDecoratorBookings(ctx, email)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// FindAssignedProject returns booking id as currently assigned to email.
func (s *DecoratorService) FindAssignedProject(ctx context.Context, email, id string) (models.Booking, error) {
	projects, err := s.ListAssignedProjects(ctx, email)
	if err != nil {
		return models.Booking{}, err
	}
	for _, b := range projects {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Booking{}, apperr.NotFound("project")
}

// Partition splits projects into those scheduled for today and the rest,
// each ordered by booking date.
func (s *DecoratorService) Partition(bookings []models.Booking, today models.Date) models.ProjectsPage {
	page := models.ProjectsPage{Today: []models.ProjectView{}, Other: []models.ProjectView{}}
	for _, b := range bookings {
		current := b.CurrentProjectStatus()
		view := models.ProjectView{
			Booking:       b,
			CurrentStatus: current,
			NextStatuses:  s.policy.NextStatuses(current),
		}
		if b.BookingDate.Equal(today) {
			page.Today = append(page.Today, view)
		} else {
			page.Other = append(page.Other, view)
		}
	}
	sort.SliceStable(page.Other, func(i, j int) bool {
		return page.Other[i].BookingDate.Before(page.Other[j].BookingDate)
	})
	return page
}

// AdvanceStatus moves booking to next. Selecting the current status is a
// no-op and makes no call.
func (s *DecoratorService) AdvanceStatus(ctx context.Context, email string, booking models.Booking, next models.ProjectStatus) (models.Booking, error) {
	if !strings.EqualFold(booking.AssignedDecoratorEmail, email) {
		return booking, apperr.ErrNotAssignedToYou
	}
	current := booking.CurrentProjectStatus()
	if err := s.policy.CheckTransition(current, next); err != nil {
		return booking, err
	}
	if next == current {
		return booking, nil
	}
	if err := s.backend.UpdateProjectStatus(ctx, booking.ID, next); err != nil {
		return booking, err
	}

	s.logger.Info().Str("booking_id", booking.ID).Str("from", string(current)).Str("to", string(next)).Msg("project status updated")
	booking.ProjectStatus = next
	return booking, nil
}

func (s *DecoratorService) GetEarnings(ctx context.Context, email string) (*models.Earnings, error) {
	if email == "" {
		return nil, apperr.ErrUnauthenticated
	}
	earnings, err := s.backend.GetEarnings(ctx, email)
	if err != nil {
		return nil, err
	}
	if earnings.CompletedBookings == nil {
		earnings.CompletedBookings = []models.Booking{}
	}
	return earnings, nil
}
