package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/backend"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
)

const (
	SessionKey        = "session"
	sessionOptionsKey = "session_options"
)

type SessionOptions struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

// Session attaches the browser's session context to the request and
// resolves identity and role before the guard runs. Only ids this server
// issued are honoured; anything else gets a fresh id. Failures leave the
// context unresolved.
func Session(registry *session.Registry, auth *services.AuthService, roles *services.RoleResolver, opts SessionOptions, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := c.Cookie(opts.CookieName)
		if err != nil || uuid.Validate(id) != nil || !auth.Known(ctx, id) {
			id = session.NewID()
		}
		c.Set(sessionOptionsKey, opts)
		// Refresh the cookie so an active session does not expire.
		setSessionCookie(c, opts, id)

		sc := registry.Get(id)
		c.Set(SessionKey, sc)

		if err := auth.Restore(ctx, sc); err != nil {
			logger.Warn().Err(err).Msg("session restore failed")
		}
		if sc.Identity() != nil {
			if _, err := roles.ResolveRole(ctx, sc); err != nil {
				logger.Warn().Err(err).Msg("role resolution failed")
			}
		}

		c.Request = c.Request.WithContext(backend.WithToken(ctx, sc.Tokens().AccessToken))
		c.Next()
	}
}

// ReplaceSession swaps the request's session for sc, typically after sign-in
// rotated the id, and reissues the cookie.
func ReplaceSession(c *gin.Context, sc *session.Context) {
	c.Set(SessionKey, sc)
	if v, ok := c.Get(sessionOptionsKey); ok {
		if opts, ok := v.(SessionOptions); ok {
			setSessionCookie(c, opts, sc.ID)
		}
	}
	c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), sc.Tokens().AccessToken))
}

func setSessionCookie(c *gin.Context, opts SessionOptions, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.CookieName, id, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
}

// SessionFrom returns the session context set by Session. Outside that
// middleware it returns a detached anonymous context.
func SessionFrom(c *gin.Context) *session.Context {
	if v, ok := c.Get(SessionKey); ok {
		if sc, ok := v.(*session.Context); ok {
			return sc
		}
	}
	sc := session.NewRegistry().Get("detached")
	sc.MarkAnonymous()
	return sc
}
