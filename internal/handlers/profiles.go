package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

type ProfileHandler struct {
	auth   *services.AuthService
	images *services.ImageService
}

func NewProfileHandler(auth *services.AuthService, images *services.ImageService) *ProfileHandler {
	return &ProfileHandler{auth: auth, images: images}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	role, _ := sc.Role()
	render(c, http.StatusOK, models.View{Title: "My profile", Data: gin.H{
		"identity": sc.Identity(),
		"role":     role,
	}})
}

// UpdateProfile changes the display name and avatar. The avatar may be an
// uploaded "photo" file or a photoURL.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	view := models.View{Title: "My profile"}
	var req models.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), view)
		return
	}

	avatar := req.PhotoURL
	uploaded, err := uploadedImage(c, h.images, "photo", services.FolderAvatars)
	if err != nil {
		renderError(c, err, view)
		return
	}
	if uploaded != "" {
		avatar = uploaded
	}

	var patch models.ProfilePatch
	if name := strings.TrimSpace(req.Name); name != "" {
		patch.DisplayName = &name
	}
	if avatar != "" {
		patch.AvatarURL = &avatar
	}

	sc := middleware.SessionFrom(c)
	if _, err := h.auth.UpdateProfile(c.Request.Context(), sc, patch); err != nil {
		renderError(c, err, view)
		return
	}
	redirect(c, sc, c.Request.URL.Path, "Profile updated")
}
