package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/cache"
	"elite-decor-web/internal/metrics"
	"elite-decor-web/internal/models"
)

const (
	ledgerTTL     = 24 * time.Hour
	claimTTL      = 30 * time.Second
	claimPollStep = 200 * time.Millisecond
)

// PaymentService hands bookings to the payment processor and verifies the
// processor's return exactly once per (session, booking) pair.
type PaymentService struct {
	backend PaymentBackend
	ledger  cache.Store
	group   singleflight.Group
	logger  zerolog.Logger
}

func NewPaymentService(backend PaymentBackend, ledger cache.Store, logger zerolog.Logger) *PaymentService {
	return &PaymentService{backend: backend, ledger: ledger, logger: logger}
}

// StartCheckout returns the processor URL the browser is sent to.
func (s *PaymentService) StartCheckout(ctx context.Context, booking models.Booking) (string, error) {
	if booking.Paid {
		return "", apperr.ErrAlreadyPaid
	}
	if !booking.Payable() {
		return "", apperr.Validation("", "cancelled bookings cannot be paid")
	}
	checkout, err := s.backend.CreateCheckoutSession(ctx, booking)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("booking_id", booking.ID).Msg("checkout session created")
	return checkout.URL, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, email string) ([]models.Payment, error) {
	if email == "" {
		return nil, apperr.ErrUnauthenticated
	}
	payments, err := s.backend.ListUserPayments(ctx, email)
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

func ledgerKey(sessionID, bookingID string) string {
	return "payment:verified:" + sessionID + ":" + bookingID
}

// VerifyPayment confirms a checkout return. The first caller for a pair
// calls the backend; concurrent callers share that call and later callers
// get the recorded outcome. A definitive failure is recorded too; a
// transport failure is not, so a retry may verify again.
func (s *PaymentService) VerifyPayment(ctx context.Context, sessionID, bookingID string) (*models.VerifiedPayment, error) {
	sessionID = strings.TrimSpace(sessionID)
	bookingID = strings.TrimSpace(bookingID)
	if sessionID == "" || bookingID == "" {
		return nil, apperr.ErrMalformedReturn
	}
	key := ledgerKey(sessionID, bookingID)

	if v, ok := s.recorded(ctx, key); ok {
		metrics.PaymentVerificationsTotal.WithLabelValues("hit").Inc()
		return outcome(v)
	}

	leader := false
	res, err, shared := s.group.Do(key, func() (interface{}, error) {
		leader = true
		return s.verifyOnce(ctx, key, sessionID, bookingID)
	})
	if shared && !leader {
		metrics.PaymentVerificationsTotal.WithLabelValues("shared").Inc()
	}
	if err != nil {
		return nil, err
	}
	return outcome(res.(*models.VerifiedPayment))
}

func (s *PaymentService) verifyOnce(ctx context.Context, key, sessionID, bookingID string) (*models.VerifiedPayment, error) {
	if v, ok := s.recorded(ctx, key); ok {
		metrics.PaymentVerificationsTotal.WithLabelValues("hit").Inc()
		return v, nil
	}

	// Another replica may be verifying the same pair.
	claimed, err := s.ledger.SetNX(ctx, key+":claim", "1", claimTTL)
	if err != nil {
		s.logger.Warn().Err(err).Msg("payment ledger claim failed, verifying anyway")
		claimed = true
	}
	if !claimed {
		return s.awaitRecorded(ctx, key)
	}

	metrics.PaymentVerificationsTotal.WithLabelValues("miss").Inc()
	callCtx := context.WithoutCancel(ctx)
	verified, err := s.backend.VerifyPayment(callCtx, sessionID, bookingID)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindVerification {
			_ = s.ledger.Delete(callCtx, key+":claim")
			return nil, err
		}
		verified = &models.VerifiedPayment{Paid: false, Message: apperr.MessageOf(err)}
	}
	verified.SessionID = sessionID
	verified.BookingID = bookingID

	s.record(callCtx, key, verified)
	s.logger.Info().Str("booking_id", bookingID).Bool("paid", verified.Paid).Msg("payment verified")
	return verified, nil
}

func (s *PaymentService) awaitRecorded(ctx context.Context, key string) (*models.VerifiedPayment, error) {
	ticker := time.NewTicker(claimPollStep)
	defer ticker.Stop()
	deadline := time.After(claimTTL)
	for {
		select {
		case <-ctx.Done():
			return nil, apperr.Fetch("cancelled", "request cancelled", ctx.Err())
		case <-deadline:
			return nil, apperr.Timeout(nil)
		case <-ticker.C:
			if v, ok := s.recorded(ctx, key); ok {
				metrics.PaymentVerificationsTotal.WithLabelValues("hit").Inc()
				return v, nil
			}
		}
	}
}

func (s *PaymentService) recorded(ctx context.Context, key string) (*models.VerifiedPayment, bool) {
	raw, ok, err := s.ledger.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Msg("payment ledger read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var v models.VerifiedPayment
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (s *PaymentService) record(ctx context.Context, key string, v *models.VerifiedPayment) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.ledger.Set(ctx, key, string(raw), ledgerTTL); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to record payment outcome")
	}
}

// outcome turns a recorded failure back into a verification error.
func outcome(v *models.VerifiedPayment) (*models.VerifiedPayment, error) {
	if !v.Paid {
		msg := v.Message
		if msg == "" {
			msg = "payment could not be verified"
		}
		return v, apperr.Verification(msg, nil)
	}
	return v, nil
}
