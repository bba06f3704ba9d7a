package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/models"
)

// AdminService holds the admin dashboard operations: catalog upkeep, user
// roles and decorator assignment.
type AdminService struct {
	backend  AdminBackend
	notifier Notifier
	logger   zerolog.Logger
}

func NewAdminService(backend AdminBackend, notifier Notifier, logger zerolog.Logger) *AdminService {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &AdminService{backend: backend, notifier: notifier, logger: logger}
}

func validateService(in models.ServiceInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("service_name", "service name is required")
	}
	if in.Cost.IsNegative() {
		return apperr.Validation("cost", "cost cannot be negative")
	}
	if !in.Category.Valid() {
		return apperr.Validation("service_category", "choose a valid category")
	}
	return nil
}

func (s *AdminService) CreateService(ctx context.Context, adminEmail string, in models.ServiceInput) error {
	if err := validateService(in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.CreatedByEmail = adminEmail
	if err := s.backend.CreateService(ctx, in); err != nil {
		return err
	}
	s.logger.Info().Str("service", in.Name).Str("admin", adminEmail).Msg("service created")
	return nil
}

func (s *AdminService) UpdateService(ctx context.Context, id string, in models.ServiceInput) error {
	if err := validateService(in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.backend.UpdateService(ctx, id, in); err != nil {
		return err
	}
	s.logger.Info().Str("service_id", id).Msg("service updated")
	return nil
}

func (s *AdminService) DeleteService(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return apperr.ErrConfirmationRequired
	}
	if err := s.backend.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("service_id", id).Msg("service deleted")
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context, role models.Role, searchText string) ([]models.RoleAssignment, error) {
	users, err := s.backend.ListUsers(ctx, role, strings.TrimSpace(searchText))
	if err != nil {
		return nil, err
	}
	out := make([]models.RoleAssignment, 0, len(users))
	for _, u := range users {
		out = append(out, u.Normalize())
	}
	return out, nil
}

// PromoteToDecorator turns a plain user into a decorator. There is no way
// back to user.
func (s *AdminService) PromoteToDecorator(ctx context.Context, email string) error {
	user, err := s.backend.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if user.Normalize().Role != models.RoleUser {
		return apperr.ErrNotPromotable
	}
	if err := s.backend.MakeDecorator(ctx, email); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Msg("user promoted to decorator")
	s.notifier.RoleChanged(email)
	return nil
}

func (s *AdminService) SetDecoratorStatus(ctx context.Context, email string, status models.DecoratorStatus, confirmed bool) error {
	if !status.Valid() {
		return apperr.Validation("status", "status must be active or inactive")
	}
	if !confirmed {
		return apperr.ErrConfirmationRequired
	}
	user, err := s.backend.GetUser(ctx, email)
	if err != nil {
		return err
	}
	if user.Normalize().Role != models.RoleDecorator {
		return apperr.ErrNotDecorator
	}
	if err := s.backend.SetDecoratorStatus(ctx, email, status); err != nil {
		return err
	}
	s.logger.Info().Str("email", email).Str("status", string(status)).Msg("decorator status changed")
	s.notifier.RoleChanged(email)
	return nil
}

func (s *AdminService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.backend.ListAllBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	return bookings, nil
}

// FindBooking looks a booking up in the full booking list.
func (s *AdminService) FindBooking(ctx context.Context, id string) (models.Booking, error) {
	bookings, err := s.ListBookings(ctx, models.BookingFilter{})
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

// ListActiveDecorators returns decorators that can take new projects.
func (s *AdminService) ListActiveDecorators(ctx context.Context) ([]models.RoleAssignment, error) {
	decorators, err := s.backend.ListActiveDecorators(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.RoleAssignment, 0, len(decorators))
	for _, d := range decorators {
		if n := d.Normalize(); n.IsActiveDecorator() {
			out = append(out, n)
		}
	}
	return out, nil
}

// AssignDecorator assigns an active decorator to a paid, unassigned
// booking. An unpaid booking is rejected before any backend call.
func (s *AdminService) AssignDecorator(ctx context.Context, booking models.Booking, decoratorEmail string) (models.Booking, error) {
	if !booking.Paid {
		return booking, apperr.ErrPaymentRequired
	}
	if booking.Assigned() {
		return booking, apperr.ErrAlreadyAssigned
	}
	decoratorEmail = strings.TrimSpace(decoratorEmail)
	if decoratorEmail == "" {
		return booking, apperr.Validation("decoratorEmail", "choose a decorator")
	}

	decorators, err := s.ListActiveDecorators(ctx)
	if err != nil {
		return booking, err
	}
	var chosen *models.RoleAssignment
	for i := range decorators {
		if strings.EqualFold(decorators[i].Email, decoratorEmail) {
			chosen = &decorators[i]
			break
		}
	}
	if chosen == nil {
		return booking, apperr.ErrDecoratorInactive
	}

	if err := s.backend.AssignDecorator(ctx, booking.ID, chosen.Email, chosen.Name); err != nil {
		return booking, err
	}
	s.logger.Info().Str("booking_id", booking.ID).Str("decorator", chosen.Email).Msg("decorator assigned")

	booking.AssignedDecoratorEmail = chosen.Email
	booking.AssignedDecoratorName = chosen.Name
	booking.ProjectStatus = models.ProjectAssigned
	return booking, nil
}
