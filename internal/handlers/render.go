package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
	"elite-decor-web/internal/session"
)

// page fills the session-derived parts of a view: route, shell, user, role,
// menu and any pending flash.
func page(c *gin.Context, v models.View) models.View {
	route := middleware.RouteFrom(c).Route
	if v.View == "" {
		v.View = route.View
	}
	if v.Shell == "" {
		v.Shell = string(route.Shell)
	}

	sc := middleware.SessionFrom(c)
	if identity := sc.Identity(); identity != nil {
		v.User = &models.SessionUser{
			Email:       identity.Email,
			DisplayName: identity.DisplayName,
			AvatarURL:   identity.AvatarURL,
		}
		if role, ok := sc.Role(); ok && role.Role != "" {
			v.Role = role.Role
			if v.Shell != string(navigation.ShellPublic) && v.Shell != string(navigation.ShellNone) {
				v.Menu = navigation.MenuFor(role.Role)
			}
		}
	}
	if v.Notification == nil {
		v.Notification = sc.TakeFlash()
	}
	return v
}

func render(c *gin.Context, status int, v models.View) {
	c.JSON(status, page(c, v))
}

// statusFor maps an error kind to the HTTP status of the rendered view.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindVerification:
		return http.StatusUnprocessableEntity
	case apperr.KindAuth:
		if errors.Is(err, apperr.ErrNetworkUnavailable) {
			return http.StatusServiceUnavailable
		}
		return http.StatusUnauthorized
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// renderError re-renders v with err: a field error inline, anything else as
// a notification.
func renderError(c *gin.Context, err error, v models.View) {
	_ = c.Error(err)
	status := statusFor(err)
	if field := apperr.FieldOf(err); field != "" {
		if v.FieldErrors == nil {
			v.FieldErrors = map[string]string{}
		}
		v.FieldErrors[field] = apperr.MessageOf(err)
		status = http.StatusUnprocessableEntity
	} else {
		v.Notification = &models.Notification{Level: models.LevelError, Message: apperr.MessageOf(err)}
	}
	render(c, status, v)
}

// renderFieldErrors renders a form that failed binding.
func renderFieldErrors(c *gin.Context, fields map[string]string, v models.View) {
	v.FieldErrors = fields
	render(c, http.StatusUnprocessableEntity, v)
}

// redirect finishes a successful form post: flash a message and send the
// browser to path.
func redirect(c *gin.Context, sc *session.Context, path, message string) {
	if message != "" {
		sc.Flash(models.LevelSuccess, message)
	}
	c.Redirect(http.StatusSeeOther, path)
}

// requireSignIn sends an anonymous visitor to sign-in, returning to the
// current page.
func requireSignIn(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, navigation.LoginRedirect(c.Request.URL.RequestURI()))
}

// NotFound renders the catch-all view.
func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, models.View{
		View:  navigation.NotFoundView,
		Shell: string(navigation.ShellPublic),
		Title: "Page not found",
	})
}
