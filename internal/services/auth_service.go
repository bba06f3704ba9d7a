package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/database"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/session"
	"elite-decor-web/internal/supabase"
)

// SessionStore persists identity tokens between processes.
type SessionStore interface {
	Save(ctx context.Context, id string, s database.StoredSession) error
	Get(ctx context.Context, id string) (*database.StoredSession, error)
	Delete(ctx context.Context, id string) error
}

type TokenVerifier interface {
	Verify(token string) (*supabase.Claims, error)
}

// AuthService is the identity side of a session: sign-in, sign-up,
// sign-out, profile updates and restoring a stored session.
type AuthService struct {
	provider supabase.IdentityProvider
	verifier TokenVerifier
	store    SessionStore
	registry *session.Registry
	roles    *RoleResolver
	notifier Notifier
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAuthService(
	provider supabase.IdentityProvider,
	verifier TokenVerifier,
	store SessionStore,
	registry *session.Registry,
	roles *RoleResolver,
	notifier Notifier,
	ttl time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if notifier == nil {
		notifier = NopNotifier
	}
	return &AuthService{
		provider: provider,
		verifier: verifier,
		store:    store,
		registry: registry,
		roles:    roles,
		notifier: notifier,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the clock; tests only.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// CurrentIdentity is the identity of sc, or nil when nobody is signed in.
func (s *AuthService) CurrentIdentity(sc *session.Context) *models.Identity {
	return sc.Identity()
}

// Known reports whether id names a session this server issued, either live
// in the registry or persisted in the store. A store failure counts as
// known; sign-in rotates the id regardless.
func (s *AuthService) Known(ctx context.Context, id string) bool {
	if _, ok := s.registry.Lookup(id); ok {
		return true
	}
	_, err := s.store.Get(ctx, id)
	if errors.Is(err, database.ErrSessionNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("session store unavailable, keeping cookie")
	}
	return true
}

// SignIn authenticates and returns the session now carrying the identity.
// The session id always changes; sc is discarded.
func (s *AuthService) SignIn(ctx context.Context, sc *session.Context, email, password string) (*session.Context, error) {
	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		s.logger.Info().Err(err).Str("email", email).Msg("sign-in failed")
		return nil, err
	}
	fresh, err := s.establish(ctx, sc, sess)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", sess.Identity.Email).Msg("signed in")
	return fresh, nil
}

// SignUp registers and signs in, rotating the session id like SignIn.
func (s *AuthService) SignUp(ctx context.Context, sc *session.Context, email, password string, profile models.Profile) (*session.Context, error) {
	sess, err := s.provider.SignUp(ctx, email, password, profile)
	if err != nil {
		s.logger.Info().Err(err).Str("email", email).Msg("sign-up failed")
		return nil, err
	}
	fresh, err := s.establish(ctx, sc, sess)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", sess.Identity.Email).Msg("registered")
	return fresh, nil
}

// SignOut always tears the local session down; a provider failure is
// reported after the fact.
func (s *AuthService) SignOut(ctx context.Context, sc *session.Context) error {
	tokens := sc.Tokens()

	var providerErr error
	if tokens.AccessToken != "" {
		providerErr = s.provider.SignOut(ctx, tokens.AccessToken)
		if providerErr != nil {
			s.logger.Warn().Err(providerErr).Msg("identity provider sign-out failed")
		}
	}

	if s.roles != nil {
		s.roles.Forget(ctx, sc.ID)
	}
	if err := s.store.Delete(ctx, sc.ID); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete stored session")
	}
	sc.Teardown()
	s.notifier.IdentityChanged(sc.ID)

	if providerErr != nil && !errors.Is(providerErr, apperr.ErrSessionExpired) {
		return providerErr
	}
	return nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, sc *session.Context, patch models.ProfilePatch) (*models.Identity, error) {
	current := sc.Identity()
	if current == nil {
		return nil, apperr.ErrUnauthenticated
	}
	if patch.Empty() {
		return current, nil
	}
	if err := s.Restore(ctx, sc); err != nil {
		return nil, err
	}

	updated, err := s.provider.UpdateProfile(ctx, sc.Tokens().AccessToken, patch)
	if err != nil {
		return nil, err
	}
	sc.UpdateIdentity(*updated)
	s.notifier.IdentityChanged(sc.ID)
	return updated, nil
}

// Restore resolves the identity of sc from the stored session, refreshing
// an expired access token once. It returns an error only when the outcome
// is unknown (store or provider unreachable); sc then stays unresolved.
func (s *AuthService) Restore(ctx context.Context, sc *session.Context) error {
	now := s.now()
	if sc.IdentityResolved() && !sc.TokenExpired(now) {
		return nil
	}

	stored, err := s.store.Get(ctx, sc.ID)
	if errors.Is(err, database.ErrSessionNotFound) {
		if sc.Identity() != nil {
			s.expire(ctx, sc)
			return nil
		}
		sc.MarkAnonymous()
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	claims, verr := s.verifier.Verify(stored.AccessToken)
	if verr == nil {
		sc.SignIn(identityFromClaims(claims, stored), session.Tokens{
			AccessToken:  stored.AccessToken,
			RefreshToken: stored.RefreshToken,
			ExpiresAt:    tokenExpiry(claims, stored),
		})
		return nil
	}
	if !supabase.Expired(verr) {
		s.logger.Warn().Err(verr).Msg("discarding session with invalid token")
		s.expire(ctx, sc)
		return nil
	}

	refreshed, err := s.provider.Refresh(ctx, stored.RefreshToken)
	if errors.Is(err, apperr.ErrSessionExpired) || errors.Is(err, apperr.ErrInvalidCredentials) {
		s.expire(ctx, sc)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	if err := s.persist(ctx, sc.ID, refreshed, stored.CreatedAt); err != nil {
		return err
	}
	sc.SignIn(refreshed.Identity, tokensOf(refreshed))
	return nil
}

// establish stores sess under a new session id and retires the old one.
func (s *AuthService) establish(ctx context.Context, sc *session.Context, sess *supabase.Session) (*session.Context, error) {
	id := session.NewID()
	if err := s.persist(ctx, id, sess, time.Time{}); err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, sc.ID); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete replaced session")
	}
	if s.roles != nil {
		s.roles.Forget(ctx, sc.ID)
	}

	fresh := s.registry.Rotate(sc, id)
	fresh.SignIn(sess.Identity, tokensOf(sess))
	s.notifier.IdentityChanged(sc.ID)
	return fresh, nil
}

func (s *AuthService) persist(ctx context.Context, id string, sess *supabase.Session, createdAt time.Time) error {
	err := s.store.Save(ctx, id, database.StoredSession{
		UserID:         sess.Identity.ID,
		Email:          sess.Identity.Email,
		AccessToken:    sess.AccessToken,
		RefreshToken:   sess.RefreshToken,
		TokenExpiresAt: sess.ExpiresAt,
		ExpiresAt:      s.now().Add(s.ttl),
		CreatedAt:      createdAt,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// expire ends a session the provider no longer honours and tells the user.
func (s *AuthService) expire(ctx context.Context, sc *session.Context) {
	wasSignedIn := sc.Identity() != nil
	if err := s.store.Delete(ctx, sc.ID); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete expired session")
	}
	if s.roles != nil {
		s.roles.Forget(ctx, sc.ID)
	}
	sc.Teardown()
	sc.Flash(models.LevelInfo, apperr.ErrSessionExpired.Message)
	if wasSignedIn {
		s.notifier.IdentityChanged(sc.ID)
	}
}

func tokensOf(sess *supabase.Session) session.Tokens {
	return session.Tokens{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}
}

func identityFromClaims(c *supabase.Claims, stored *database.StoredSession) models.Identity {
	id := models.Identity{ID: c.Subject, Email: c.Email}
	if id.Email == "" {
		id.Email = stored.Email
	}
	if v, ok := c.UserMetadata["full_name"].(string); ok {
		id.DisplayName = v
	} else if v, ok := c.UserMetadata["name"].(string); ok {
		id.DisplayName = v
	}
	if v, ok := c.UserMetadata["avatar_url"].(string); ok {
		id.AvatarURL = v
	}
	return id
}

func tokenExpiry(c *supabase.Claims, stored *database.StoredSession) time.Time {
	if c.ExpiresAt != nil {
		return c.ExpiresAt.Time
	}
	return stored.TokenExpiresAt
}
