package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

const myProjectsPath = "/decorator/my-projects"

type DecoratorHandler struct {
	decorator *services.DecoratorService
	now       func() time.Time
}

func NewDecoratorHandler(decorator *services.DecoratorService) *DecoratorHandler {
	return &DecoratorHandler{decorator: decorator, now: time.Now}
}

// Home is the decorator overview: today's projects and earnings.
func (h *DecoratorHandler) Home(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	email := sc.Email()

	var projects []models.Booking
	var earnings *models.Earnings
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		projects, err = h.decorator.ListAssignedProjects(ctx, email)
		return err
	})
	g.Go(func() (err error) {
		earnings, err = h.decorator.GetEarnings(ctx, email)
		return err
	})
	view := models.View{Title: "Decorator dashboard"}
	if err := g.Wait(); err != nil {
		renderError(c, err, view)
		return
	}

	sc.RememberBookings(projects)
	split := h.decorator.Partition(projects, models.DateOf(h.now()))
	view.Data = gin.H{"today": split.Today, "earnings": earnings}
	render(c, http.StatusOK, view)
}

// MyProjects lists assigned projects split into today and the rest, each
// with the statuses it can move to.
func (h *DecoratorHandler) MyProjects(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	view := models.View{Title: "Assigned projects"}
	projects, err := h.decorator.ListAssignedProjects(c.Request.Context(), sc.Email())
	if err != nil {
		view.Data = models.ProjectsPage{Today: []models.ProjectView{}, Other: []models.ProjectView{}}
		renderError(c, err, view)
		return
	}
	sc.RememberBookings(projects)
	view.Data = h.decorator.Partition(projects, models.DateOf(h.now()))
	render(c, http.StatusOK, view)
}

func (h *DecoratorHandler) UpdateStatus(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	var req models.ProjectStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), models.View{Title: "Assigned projects"})
		return
	}

	booking, err := h.decorator.FindAssignedProject(c.Request.Context(), sc.Email(), c.Param("id"))
	if err != nil {
		flashError(c, sc, myProjectsPath, err)
		return
	}

	updated, err := h.decorator.AdvanceStatus(c.Request.Context(), sc.Email(), booking, models.ProjectStatus(req.Status))
	if err != nil {
		flashError(c, sc, myProjectsPath, err)
		return
	}
	sc.UpdateRememberedBooking(updated)
	redirect(c, sc, myProjectsPath, "Status set to "+string(updated.ProjectStatus))
}

func (h *DecoratorHandler) Earnings(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	view := models.View{Title: "Earnings"}
	earnings, err := h.decorator.GetEarnings(c.Request.Context(), sc.Email())
	if err != nil {
		renderError(c, err, view)
		return
	}
	view.Data = earnings
	render(c, http.StatusOK, view)
}
