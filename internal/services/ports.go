package services

import (
	"context"
	"io"

	"elite-decor-web/internal/models"
)

// The REST backend, split by the controller that uses each part.
// *backend.Client satisfies all of them.

type RoleBackend interface {
	GetUser(ctx context.Context, email string) (*models.RoleAssignment, error)
}

type CatalogBackend interface {
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error)
	GetService(ctx context.Context, id string) (*models.Service, error)
	ListTopDecorators(ctx context.Context, limit int) ([]models.RoleAssignment, error)
}

type BookingBackend interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error)
	ListUserBookings(ctx context.Context, email string) ([]models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

type PaymentBackend interface {
	CreateCheckoutSession(ctx context.Context, booking models.Booking) (*models.CheckoutSession, error)
	VerifyPayment(ctx context.Context, sessionID, bookingID string) (*models.VerifiedPayment, error)
	ListUserPayments(ctx context.Context, email string) ([]models.Payment, error)
}

type AdminBackend interface {
	CreateService(ctx context.Context, in models.ServiceInput) error
	UpdateService(ctx context.Context, id string, in models.ServiceInput) error
	DeleteService(ctx context.Context, id string) error
	GetUser(ctx context.Context, email string) (*models.RoleAssignment, error)
	ListUsers(ctx context.Context, role models.Role, searchText string) ([]models.RoleAssignment, error)
	MakeDecorator(ctx context.Context, email string) error
	SetDecoratorStatus(ctx context.Context, email string, status models.DecoratorStatus) error
	ListActiveDecorators(ctx context.Context) ([]models.RoleAssignment, error)
	ListAllBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	AssignDecorator(ctx context.Context, bookingID, decoratorEmail, decoratorName string) error
}

type DecoratorBackend interface {
	ListDecoratorBookings(ctx context.Context, email string) ([]models.Booking, error)
	UpdateProjectStatus(ctx context.Context, bookingID string, status models.ProjectStatus) error
	GetEarnings(ctx context.Context, email string) (*models.Earnings, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, folder, filename, contentType string, data io.Reader) (string, error)
}

// Notifier pushes change hints to open browser sessions.
type Notifier interface {
	IdentityChanged(sessionID string)
	RoleChanged(email string)
}

type nopNotifier struct{}

func (nopNotifier) IdentityChanged(string) {}
func (nopNotifier) RoleChanged(string)     {}

// NopNotifier discards every hint.
var NopNotifier Notifier = nopNotifier{}
