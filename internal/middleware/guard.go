package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/metrics"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
)

const (
	RouteKey = "route"

	ViewLoading      = "loading"
	ViewAccessDenied = "access-denied"

	// retryAfterSeconds is sent with the loading view while identity or
	// role cannot be resolved.
	retryAfterSeconds = "2"
)

// Guard evaluates the route guard on every request. Unmatched paths pass
// through to the not-found handler.
func Guard(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		match := navigation.Resolve(c.Request.Method, c.Request.URL.Path)
		c.Set(RouteKey, match)
		if match.NotFound {
			c.Next()
			return
		}

		sc := SessionFrom(c)
		decision := navigation.Evaluate(sc.Snapshot(), match.Route.Requirement, c.Request.URL.RequestURI())
		metrics.GuardDecisionsTotal.WithLabelValues(string(decision.State)).Inc()

		switch decision.State {
		case navigation.StateAllowed:
			c.Next()
		case navigation.StateChecking:
			logger.Debug().Str("path", c.Request.URL.Path).Msg("guard still checking")
			c.Header("Retry-After", retryAfterSeconds)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.View{
				View:  ViewLoading,
				Shell: string(match.Route.Shell),
			})
		case navigation.StateDeniedUnauthenticated:
			c.Redirect(http.StatusSeeOther, decision.Redirect)
			c.Abort()
		case navigation.StateDeniedWrongRole:
			logger.Info().Str("path", c.Request.URL.Path).Msg("access denied for role")
			c.AbortWithStatusJSON(http.StatusForbidden, models.View{
				View:     ViewAccessDenied,
				Shell:    string(navigation.ShellPublic),
				Title:    "Access denied",
				Redirect: decision.Redirect,
				Notification: &models.Notification{
					Level:   models.LevelError,
					Message: "you do not have access to this page",
				},
			})
		}
	}
}

// RouteFrom returns the match set by Guard.
func RouteFrom(c *gin.Context) navigation.Match {
	if v, ok := c.Get(RouteKey); ok {
		if m, ok := v.(navigation.Match); ok {
			return m
		}
	}
	return navigation.Resolve(c.Request.Method, c.Request.URL.Path)
}
