package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/navigation"
	"elite-decor-web/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type authForm struct {
	Redirect string `json:"redirect,omitempty"`
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	target := navigation.SafeReturnPath(c.Query("redirect"))
	if sc.Identity() != nil {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	render(c, http.StatusOK, models.View{Title: "Sign in", Data: authForm{Redirect: target}})
}

// Login signs in and returns to the page that asked for it.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	view := models.View{Title: "Sign in"}
	if err := c.ShouldBind(&req); err != nil {
		view.Data = authForm{Redirect: navigation.SafeReturnPath(req.Redirect)}
		renderFieldErrors(c, fieldErrors(err), view)
		return
	}
	target := navigation.SafeReturnPath(req.Redirect)
	view.Data = authForm{Redirect: target}

	sc := middleware.SessionFrom(c)
	fresh, err := h.auth.SignIn(c.Request.Context(), sc, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		renderError(c, err, view)
		return
	}
	middleware.ReplaceSession(c, fresh)
	redirect(c, fresh, target, "Welcome back, "+displayName(fresh.Identity()))
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if middleware.SessionFrom(c).Identity() != nil {
		c.Redirect(http.StatusSeeOther, navigation.SafeDefault)
		return
	}
	render(c, http.StatusOK, models.View{Title: "Create account", Data: authForm{Redirect: navigation.SafeReturnPath(c.Query("redirect"))}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	view := models.View{Title: "Create account"}
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), view)
		return
	}
	target := navigation.SafeReturnPath(req.Redirect)
	view.Data = authForm{Redirect: target}

	sc := middleware.SessionFrom(c)
	fresh, err := h.auth.SignUp(c.Request.Context(), sc, strings.TrimSpace(req.Email), req.Password, models.Profile{
		DisplayName: strings.TrimSpace(req.Name),
		AvatarURL:   req.PhotoURL,
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateRegistration) {
			dup := apperr.Wrap(apperr.ErrDuplicateRegistration, err)
			dup.Field = "email"
			err = dup
		}
		renderError(c, err, view)
		return
	}
	middleware.ReplaceSession(c, fresh)
	redirect(c, fresh, target, "Welcome, "+displayName(fresh.Identity()))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	if err := h.auth.SignOut(c.Request.Context(), sc); err != nil {
		_ = c.Error(err)
	}
	redirect(c, sc, navigation.SafeDefault, "You have been signed out")
}

func displayName(identity *models.Identity) string {
	if identity.DisplayName != "" {
		return identity.DisplayName
	}
	return identity.Email
}
