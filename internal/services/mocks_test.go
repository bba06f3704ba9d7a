package services_test

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"elite-decor-web/internal/database"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/supabase"
)

// mockBackend implements every backend port.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]models.Service)
	return list, args.Error(1)
}

func (m *mockBackend) GetService(ctx context.Context, id string) (*models.Service, error) {
	args := m.Called(ctx, id)
	svc, _ := args.Get(0).(*models.Service)
	return svc, args.Error(1)
}

func (m *mockBackend) ListTopDecorators(ctx context.Context, limit int) ([]models.RoleAssignment, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]models.RoleAssignment)
	return list, args.Error(1)
}

func (m *mockBackend) CreateService(ctx context.Context, in models.ServiceInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockBackend) UpdateService(ctx context.Context, id string, in models.ServiceInput) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *mockBackend) DeleteService(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) GetUser(ctx context.Context, email string) (*models.RoleAssignment, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.RoleAssignment)
	return u, args.Error(1)
}

func (m *mockBackend) ListUsers(ctx context.Context, role models.Role, searchText string) ([]models.RoleAssignment, error) {
	args := m.Called(ctx, role, searchText)
	list, _ := args.Get(0).([]models.RoleAssignment)
	return list, args.Error(1)
}

func (m *mockBackend) MakeDecorator(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockBackend) SetDecoratorStatus(ctx context.Context, email string, status models.DecoratorStatus) error {
	return m.Called(ctx, email, status).Error(0)
}

func (m *mockBackend) ListActiveDecorators(ctx context.Context) ([]models.RoleAssignment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.RoleAssignment)
	return list, args.Error(1)
}

func (m *mockBackend) ListAllBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *mockBackend) AssignDecorator(ctx context.Context, bookingID, decoratorEmail, decoratorName string) error {
	return m.Called(ctx, bookingID, decoratorEmail, decoratorName).Error(0)
}

func (m *mockBackend) CreateBooking(ctx context.Context, draft models.BookingDraft) (*models.Booking, error) {
	args := m.Called(ctx, draft)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBackend) ListUserBookings(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *mockBackend) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) ListDecoratorBookings(ctx context.Context, email string) ([]models.Booking, error) {
	args := m.Called(ctx, email)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *mockBackend) UpdateProjectStatus(ctx context.Context, bookingID string, status models.ProjectStatus) error {
	return m.Called(ctx, bookingID, status).Error(0)
}

func (m *mockBackend) GetEarnings(ctx context.Context, email string) (*models.Earnings, error) {
	args := m.Called(ctx, email)
	e, _ := args.Get(0).(*models.Earnings)
	return e, args.Error(1)
}

func (m *mockBackend) CreateCheckoutSession(ctx context.Context, booking models.Booking) (*models.CheckoutSession, error) {
	args := m.Called(ctx, booking)
	s, _ := args.Get(0).(*models.CheckoutSession)
	return s, args.Error(1)
}

func (m *mockBackend) VerifyPayment(ctx context.Context, sessionID, bookingID string) (*models.VerifiedPayment, error) {
	args := m.Called(ctx, sessionID, bookingID)
	v, _ := args.Get(0).(*models.VerifiedPayment)
	return v, args.Error(1)
}

func (m *mockBackend) ListUserPayments(ctx context.Context, email string) ([]models.Payment, error) {
	args := m.Called(ctx, email)
	list, _ := args.Get(0).([]models.Payment)
	return list, args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*supabase.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*supabase.Session)
	return s, args.Error(1)
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string, profile models.Profile) (*supabase.Session, error) {
	args := m.Called(ctx, email, password, profile)
	s, _ := args.Get(0).(*supabase.Session)
	return s, args.Error(1)
}

func (m *mockProvider) Refresh(ctx context.Context, refreshToken string) (*supabase.Session, error) {
	args := m.Called(ctx, refreshToken)
	s, _ := args.Get(0).(*supabase.Session)
	return s, args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *mockProvider) CurrentUser(ctx context.Context, accessToken string) (*models.Identity, error) {
	args := m.Called(ctx, accessToken)
	id, _ := args.Get(0).(*models.Identity)
	return id, args.Error(1)
}

func (m *mockProvider) UpdateProfile(ctx context.Context, accessToken string, patch models.ProfilePatch) (*models.Identity, error) {
	args := m.Called(ctx, accessToken, patch)
	id, _ := args.Get(0).(*models.Identity)
	return id, args.Error(1)
}

// memoryStore is a SessionStore backed by a map.
type memoryStore struct {
	mu   sync.Mutex
	rows map[string]database.StoredSession
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]database.StoredSession{}}
}

func (s *memoryStore) Save(_ context.Context, id string, row database.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = row
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*database.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, database.ErrSessionNotFound
	}
	return &row, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

type recordingNotifier struct {
	mu         sync.Mutex
	identities []string
	roles      []string
}

func (n *recordingNotifier) IdentityChanged(sessionID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.identities = append(n.identities, sessionID)
}

func (n *recordingNotifier) RoleChanged(email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roles = append(n.roles, email)
}

func (n *recordingNotifier) roleEvents() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.roles...)
}

type fakeUploader struct {
	folder, filename, contentType string
	body                          []byte
	err                           error
}

func (f *fakeUploader) UploadImage(_ context.Context, folder, filename, contentType string, data io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.folder, f.filename, f.contentType = folder, filename, contentType
	f.body, _ = io.ReadAll(data)
	return "https://cdn.test/" + folder + "/" + filename, nil
}
