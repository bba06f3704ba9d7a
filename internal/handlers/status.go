package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
)

// SessionHandler reports the identity and role snapshot of the caller's
// session.
type SessionHandler struct {
	roles *services.RoleResolver
}

func NewSessionHandler(roles *services.RoleResolver) *SessionHandler {
	return &SessionHandler{roles: roles}
}

func sessionStatus(sc *session.Context) models.SessionStatusResponse {
	snap := sc.Snapshot()
	resp := models.SessionStatusResponse{
		IdentityResolved: snap.IdentityResolved,
		RoleResolved:     snap.RoleResolved,
		Role:             snap.Role,
	}
	if snap.Identity != nil {
		resp.User = &models.SessionUser{
			Email:       snap.Identity.Email,
			DisplayName: snap.Identity.DisplayName,
			AvatarURL:   snap.Identity.AvatarURL,
		}
	}
	return resp
}

// GetStatus godoc
// @Summary     Session snapshot
// @Description Identity and role of the current session with their independent resolution flags
// @Tags        session
// @Produce     json
// @Success     200 {object} models.SessionStatusResponse
// @Router      /session [get]
func (h *SessionHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, sessionStatus(middleware.SessionFrom(c)))
}

// RefreshRole godoc
// @Summary     Refetch role
// @Description Drops the cached role and resolves it again, e.g. after a promotion
// @Tags        session
// @Produce     json
// @Success     200 {object} models.SessionStatusResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /session/refresh-role [post]
func (h *SessionHandler) RefreshRole(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	if _, err := h.roles.Refetch(c.Request.Context(), sc); err != nil {
		_ = c.Error(err)
		c.JSON(statusFor(err), models.ErrorResponse{Error: apperr.KindOf(err).String(), Message: apperr.MessageOf(err)})
		return
	}
	c.JSON(http.StatusOK, sessionStatus(sc))
}
