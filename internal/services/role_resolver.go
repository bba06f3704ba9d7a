package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/cache"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/session"
)

// RoleResolver maps a signed-in identity to its role. Results are kept on
// the session context and in the cache store for the session's lifetime.
type RoleResolver struct {
	backend RoleBackend
	cache   cache.Store
	ttl     time.Duration
	logger  zerolog.Logger
}

func NewRoleResolver(backend RoleBackend, store cache.Store, ttl time.Duration, logger zerolog.Logger) *RoleResolver {
	return &RoleResolver{backend: backend, cache: store, ttl: ttl, logger: logger}
}

func roleKey(sessionID string) string { return "role:" + sessionID }

// ResolveRole returns the role of the identity signed in on sc. On a fetch
// failure sc's role stays unresolved.
func (r *RoleResolver) ResolveRole(ctx context.Context, sc *session.Context) (models.RoleAssignment, error) {
	if assignment, ok := sc.Role(); ok {
		return assignment, nil
	}
	identity := sc.Identity()
	if identity == nil {
		return models.RoleAssignment{}, apperr.ErrUnauthenticated
	}

	if raw, ok, err := r.cache.Get(ctx, roleKey(sc.ID)); err != nil {
		r.logger.Warn().Err(err).Msg("role cache read failed")
	} else if ok {
		var cached models.RoleAssignment
		if err := json.Unmarshal([]byte(raw), &cached); err == nil && cached.Email == identity.Email {
			sc.SetRole(cached)
			return cached, nil
		}
	}

	assignment, err := r.fetch(ctx, identity.Email)
	if err != nil {
		return models.RoleAssignment{}, err
	}

	if raw, err := json.Marshal(assignment); err == nil {
		if err := r.cache.Set(ctx, roleKey(sc.ID), string(raw), r.ttl); err != nil {
			r.logger.Warn().Err(err).Msg("role cache write failed")
		}
	}
	sc.SetRole(assignment)
	return assignment, nil
}

// Refetch drops any cached role and resolves it again.
func (r *RoleResolver) Refetch(ctx context.Context, sc *session.Context) (models.RoleAssignment, error) {
	sc.InvalidateRole()
	r.Forget(ctx, sc.ID)
	return r.ResolveRole(ctx, sc)
}

// Forget removes the cached role of a session.
func (r *RoleResolver) Forget(ctx context.Context, sessionID string) {
	if err := r.cache.Delete(ctx, roleKey(sessionID)); err != nil {
		r.logger.Warn().Err(err).Msg("role cache delete failed")
	}
}

func (r *RoleResolver) fetch(ctx context.Context, email string) (models.RoleAssignment, error) {
	user, err := r.backend.GetUser(ctx, email)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return models.DefaultAssignment(email), nil
	}
	if err != nil {
		return models.RoleAssignment{}, fmt.Errorf("resolve role: %w", err)
	}
	assignment := user.Normalize()
	if assignment.Email == "" {
		assignment.Email = email
	}
	return assignment, nil
}
