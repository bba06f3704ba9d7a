package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/cache"
	"elite-decor-web/internal/database"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
	"elite-decor-web/internal/supabase"
)

const jwtSecret = "auth-test-secret"

func accessToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":           "user-" + email,
		"email":         email,
		"exp":           exp.Unix(),
		"user_metadata": map[string]interface{}{"full_name": "Ava Rahman"},
	}).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return tok
}

type authFixture struct {
	provider *mockProvider
	store    *memoryStore
	notifier *recordingNotifier
	auth     *services.AuthService
	registry *session.Registry
	sc       *session.Context
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		provider: &mockProvider{},
		store:    newMemoryStore(),
		notifier: &recordingNotifier{},
		registry: session.NewRegistry(),
	}
	f.sc = f.registry.Get("sess-1")
	roles := services.NewRoleResolver(&mockBackend{}, cache.NewMemory(), time.Hour, zerolog.Nop())
	f.auth = services.NewAuthService(f.provider, supabase.NewTokenVerifier(jwtSecret), f.store, f.registry, roles, f.notifier, 24*time.Hour, zerolog.Nop())
	return f
}

func TestSignIn_EstablishesSession(t *testing.T) {
	f := newAuthFixture(t)
	tok := accessToken(t, "ava@example.com", time.Now().Add(time.Hour))
	f.provider.On("SignIn", mock.Anything, "ava@example.com", "Secret1").Return(&supabase.Session{
		AccessToken:  tok,
		RefreshToken: "rt-1",
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     models.Identity{ID: "u1", Email: "ava@example.com", DisplayName: "Ava"},
	}, nil)

	fresh, err := f.auth.SignIn(context.Background(), f.sc, "ava@example.com", "Secret1")

	require.NoError(t, err)
	assert.Equal(t, "ava@example.com", fresh.Email())
	assert.Equal(t, "rt-1", fresh.Tokens().RefreshToken)

	stored, err := f.store.Get(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, tok, stored.AccessToken)
	assert.Equal(t, []string{"sess-1"}, f.notifier.identities)
}

func TestSignIn_RotatesSessionID(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "sess-1", database.StoredSession{Email: "old@example.com", AccessToken: "stale"}))
	f.sc.Flash(models.LevelInfo, "left over")
	f.provider.On("SignIn", mock.Anything, "ava@example.com", "Secret1").Return(&supabase.Session{
		AccessToken: accessToken(t, "ava@example.com", time.Now().Add(time.Hour)),
		Identity:    models.Identity{ID: "u1", Email: "ava@example.com"},
	}, nil)

	fresh, err := f.auth.SignIn(ctx, f.sc, "ava@example.com", "Secret1")

	require.NoError(t, err)
	assert.NotEqual(t, "sess-1", fresh.ID)
	assert.Nil(t, fresh.TakeFlash())

	_, ok := f.registry.Lookup("sess-1")
	assert.False(t, ok)
	current, ok := f.registry.Lookup(fresh.ID)
	require.True(t, ok)
	assert.Same(t, fresh, current)

	_, err = f.store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
	assert.Nil(t, f.sc.Identity())
	assert.False(t, f.auth.Known(ctx, "sess-1"))
	assert.True(t, f.auth.Known(ctx, fresh.ID))
}

func TestSignUp_RotatesSessionID(t *testing.T) {
	f := newAuthFixture(t)
	profile := models.Profile{DisplayName: "Ava"}
	f.provider.On("SignUp", mock.Anything, "ava@example.com", "Secret1", profile).Return(&supabase.Session{
		AccessToken: accessToken(t, "ava@example.com", time.Now().Add(time.Hour)),
		Identity:    models.Identity{ID: "u1", Email: "ava@example.com", DisplayName: "Ava"},
	}, nil)

	fresh, err := f.auth.SignUp(context.Background(), f.sc, "ava@example.com", "Secret1", profile)

	require.NoError(t, err)
	assert.NotEqual(t, "sess-1", fresh.ID)
	assert.Equal(t, "Ava", fresh.Identity().DisplayName)
	assert.Equal(t, 1, f.registry.Len())
}

func TestKnown(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Save(ctx, "stored-only", database.StoredSession{AccessToken: "at"}))

	assert.True(t, f.auth.Known(ctx, "sess-1"), "live in registry")
	assert.True(t, f.auth.Known(ctx, "stored-only"), "persisted")
	assert.False(t, f.auth.Known(ctx, "11111111-2222-4333-8444-555555555555"))
}

func TestSignIn_InvalidCredentialsLeavesSessionAlone(t *testing.T) {
	f := newAuthFixture(t)
	f.provider.On("SignIn", mock.Anything, "ava@example.com", "wrong").Return(nil, apperr.ErrInvalidCredentials)

	_, err := f.auth.SignIn(context.Background(), f.sc, "ava@example.com", "wrong")

	assert.True(t, errors.Is(err, apperr.ErrInvalidCredentials))
	assert.Nil(t, f.sc.Identity())
	_, err = f.store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestRestore_NoStoredSessionIsAnonymous(t *testing.T) {
	f := newAuthFixture(t)

	require.NoError(t, f.auth.Restore(context.Background(), f.sc))

	snap := f.sc.Snapshot()
	assert.True(t, snap.IdentityResolved)
	assert.True(t, snap.RoleResolved)
	assert.Nil(t, snap.Identity)
}

func TestRestore_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	tok := accessToken(t, "ava@example.com", time.Now().Add(time.Hour))
	require.NoError(t, f.store.Save(context.Background(), "sess-1", database.StoredSession{
		Email: "ava@example.com", AccessToken: tok, RefreshToken: "rt-1",
	}))

	require.NoError(t, f.auth.Restore(context.Background(), f.sc))

	identity := f.sc.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, "ava@example.com", identity.Email)
	assert.Equal(t, "Ava Rahman", identity.DisplayName)
	f.provider.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestRestore_ExpiredTokenRefreshes(t *testing.T) {
	f := newAuthFixture(t)
	expired := accessToken(t, "ava@example.com", time.Now().Add(-time.Hour))
	fresh := accessToken(t, "ava@example.com", time.Now().Add(time.Hour))
	require.NoError(t, f.store.Save(context.Background(), "sess-1", database.StoredSession{
		Email: "ava@example.com", AccessToken: expired, RefreshToken: "rt-1",
	}))
	f.provider.On("Refresh", mock.Anything, "rt-1").Return(&supabase.Session{
		AccessToken:  fresh,
		RefreshToken: "rt-2",
		ExpiresAt:    time.Now().Add(time.Hour),
		Identity:     models.Identity{ID: "u1", Email: "ava@example.com"},
	}, nil).Once()

	require.NoError(t, f.auth.Restore(context.Background(), f.sc))

	assert.Equal(t, "ava@example.com", f.sc.Email())
	stored, err := f.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "rt-2", stored.RefreshToken)
	f.provider.AssertExpectations(t)
}

func TestRestore_FailedRefreshExpiresSession(t *testing.T) {
	f := newAuthFixture(t)
	expired := accessToken(t, "ava@example.com", time.Now().Add(-time.Hour))
	require.NoError(t, f.store.Save(context.Background(), "sess-1", database.StoredSession{
		Email: "ava@example.com", AccessToken: expired, RefreshToken: "rt-1",
	}))
	f.provider.On("Refresh", mock.Anything, "rt-1").Return(nil, apperr.ErrSessionExpired)

	require.NoError(t, f.auth.Restore(context.Background(), f.sc))

	assert.Nil(t, f.sc.Identity())
	assert.True(t, f.sc.IdentityResolved())
	_, err := f.store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)

	flash := f.sc.TakeFlash()
	require.NotNil(t, flash)
	assert.Equal(t, apperr.ErrSessionExpired.Message, flash.Message)
}

func TestRestore_ProviderDownStaysUnresolved(t *testing.T) {
	f := newAuthFixture(t)
	expired := accessToken(t, "ava@example.com", time.Now().Add(-time.Hour))
	require.NoError(t, f.store.Save(context.Background(), "sess-1", database.StoredSession{
		Email: "ava@example.com", AccessToken: expired, RefreshToken: "rt-1",
	}))
	f.provider.On("Refresh", mock.Anything, "rt-1").Return(nil, apperr.ErrNetworkUnavailable)

	err := f.auth.Restore(context.Background(), f.sc)

	require.Error(t, err)
	assert.False(t, f.sc.IdentityResolved())
	_, err = f.store.Get(context.Background(), "sess-1")
	assert.NoError(t, err)
}

func TestSignOut_TearsDownEvenWhenProviderFails(t *testing.T) {
	f := newAuthFixture(t)
	f.sc.SignIn(models.Identity{Email: "ava@example.com"}, session.Tokens{AccessToken: "at"})
	f.sc.SetRole(models.RoleAssignment{Email: "ava@example.com", Role: models.RoleAdmin})
	require.NoError(t, f.store.Save(context.Background(), "sess-1", database.StoredSession{AccessToken: "at"}))
	f.provider.On("SignOut", mock.Anything, "at").Return(apperr.ErrNetworkUnavailable)

	err := f.auth.SignOut(context.Background(), f.sc)

	assert.Error(t, err)
	assert.Nil(t, f.sc.Identity())
	_, resolved := f.sc.Role()
	assert.True(t, resolved)
	_, err = f.store.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, database.ErrSessionNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	name := "Ava R."
	f.sc.SignIn(models.Identity{Email: "ava@example.com", DisplayName: "Ava"}, session.Tokens{AccessToken: "at", ExpiresAt: time.Now().Add(time.Hour)})
	f.provider.On("UpdateProfile", mock.Anything, "at", models.ProfilePatch{DisplayName: &name}).
		Return(&models.Identity{Email: "ava@example.com", DisplayName: name}, nil)

	updated, err := f.auth.UpdateProfile(context.Background(), f.sc, models.ProfilePatch{DisplayName: &name})

	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	assert.Equal(t, name, f.sc.Identity().DisplayName)
}

func TestUpdateProfile_RequiresIdentity(t *testing.T) {
	f := newAuthFixture(t)
	name := "x"
	_, err := f.auth.UpdateProfile(context.Background(), f.sc, models.ProfilePatch{DisplayName: &name})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
