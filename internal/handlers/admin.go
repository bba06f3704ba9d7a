package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

const (
	manageServicesPath = "/dashboard/manage-services"
	manageBookingsPath = "/dashboard/manage-bookings"
	manageUsersPath    = "/dashboard/manage-users"
)

type AdminHandler struct {
	admin   *services.AdminService
	catalog *services.CatalogService
	images  *services.ImageService
}

func NewAdminHandler(admin *services.AdminService, catalog *services.CatalogService, images *services.ImageService) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, images: images}
}

func (h *AdminHandler) ManageServices(c *gin.Context) {
	view := models.View{Title: "Manage services"}
	list, err := h.catalog.ListServices(c.Request.Context(), filterFrom(c))
	if err != nil {
		view.Data = gin.H{"services": []models.Service{}}
		renderError(c, err, view)
		return
	}
	view.Data = gin.H{"services": list, "categories": models.Categories}
	render(c, http.StatusOK, view)
}

// serviceInput binds the service form, storing an uploaded "image" file
// when one is attached.
func (h *AdminHandler) serviceInput(c *gin.Context, view models.View) (models.ServiceInput, bool) {
	var req models.ServiceRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), view)
		return models.ServiceInput{}, false
	}
	cost, err := decimal.NewFromString(req.Cost)
	if err != nil {
		renderFieldErrors(c, map[string]string{"cost": "cost must be a number"}, view)
		return models.ServiceInput{}, false
	}

	image := req.ImageURL
	uploaded, err := uploadedImage(c, h.images, "imageFile", services.FolderServices)
	if err != nil {
		renderError(c, err, view)
		return models.ServiceInput{}, false
	}
	if uploaded != "" {
		image = uploaded
	}

	return models.ServiceInput{
		Name:        req.Name,
		Cost:        cost,
		Unit:        strings.TrimSpace(req.Unit),
		Category:    models.Category(req.Category),
		Description: strings.TrimSpace(req.Description),
		Features:    models.SplitFeatures(req.Features),
		ImageURL:    image,
	}, true
}

func (h *AdminHandler) CreateService(c *gin.Context) {
	view := models.View{Title: "Manage services"}
	in, ok := h.serviceInput(c, view)
	if !ok {
		return
	}
	sc := middleware.SessionFrom(c)
	if err := h.admin.CreateService(c.Request.Context(), sc.Email(), in); err != nil {
		renderError(c, err, view)
		return
	}
	redirect(c, sc, manageServicesPath, "Service created")
}

func (h *AdminHandler) UpdateService(c *gin.Context) {
	view := models.View{Title: "Manage services", Data: gin.H{"serviceId": c.Param("id")}}
	in, ok := h.serviceInput(c, view)
	if !ok {
		return
	}
	sc := middleware.SessionFrom(c)
	if err := h.admin.UpdateService(c.Request.Context(), c.Param("id"), in); err != nil {
		renderError(c, err, view)
		return
	}
	redirect(c, sc, manageServicesPath, "Service updated")
}

func (h *AdminHandler) DeleteService(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	var req models.ConfirmRequest
	_ = c.ShouldBind(&req)
	if err := h.admin.DeleteService(c.Request.Context(), c.Param("id"), req.Confirm); err != nil {
		flashError(c, sc, manageServicesPath, err)
		return
	}
	redirect(c, sc, manageServicesPath, "Service deleted")
}

// ManageBookings lists bookings (optionally by status and paid) next to
// the decorators available for assignment.
func (h *AdminHandler) ManageBookings(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	filter := models.BookingFilter{Status: models.BookingStatus(c.Query("status"))}
	if paid, err := strconv.ParseBool(c.Query("paid")); err == nil {
		filter.Paid = &paid
	}

	var bookings []models.Booking
	var decorators []models.RoleAssignment
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		bookings, err = h.admin.ListBookings(ctx, filter)
		return err
	})
	g.Go(func() (err error) {
		decorators, err = h.admin.ListActiveDecorators(ctx)
		return err
	})
	view := models.View{Title: "Manage bookings"}
	if err := g.Wait(); err != nil {
		renderError(c, err, view)
		return
	}

	sc.RememberBookings(bookings)
	view.Data = gin.H{"bookings": bookings, "decorators": decorators, "filter": filter}
	render(c, http.StatusOK, view)
}

// AssignDecorator assigns a decorator to a paid booking. The booking is
// refetched first; an unpaid or already assigned one is refused without
// an assignment call.
func (h *AdminHandler) AssignDecorator(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	var req models.AssignRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), models.View{Title: "Manage bookings"})
		return
	}

	booking, err := h.admin.FindBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		flashError(c, sc, manageBookingsPath, err)
		return
	}

	updated, err := h.admin.AssignDecorator(c.Request.Context(), booking, req.DecoratorEmail)
	if err != nil {
		flashError(c, sc, manageBookingsPath, err)
		return
	}
	sc.UpdateRememberedBooking(updated)
	redirect(c, sc, manageBookingsPath, "Assigned "+updated.AssignedDecoratorName+" to "+updated.ServiceName)
}

func (h *AdminHandler) ManageUsers(c *gin.Context) {
	view := models.View{Title: "Manage users"}
	role := models.Role(c.Query("role"))
	users, err := h.admin.ListUsers(c.Request.Context(), role, c.Query("search"))
	if err != nil {
		view.Data = gin.H{"users": []models.RoleAssignment{}}
		renderError(c, err, view)
		return
	}
	view.Data = gin.H{"users": users, "role": role, "search": c.Query("search")}
	render(c, http.StatusOK, view)
}

func (h *AdminHandler) MakeDecorator(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	email := c.Param("email")
	if err := h.admin.PromoteToDecorator(c.Request.Context(), email); err != nil {
		flashError(c, sc, manageUsersPath, err)
		return
	}
	redirect(c, sc, manageUsersPath, email+" is now a decorator")
}

func (h *AdminHandler) SetDecoratorStatus(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	var req models.DecoratorStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		renderFieldErrors(c, fieldErrors(err), models.View{Title: "Manage users"})
		return
	}
	email := c.Param("email")
	status := models.DecoratorStatus(req.Status)
	if err := h.admin.SetDecoratorStatus(c.Request.Context(), email, status, req.Confirm); err != nil {
		flashError(c, sc, manageUsersPath, err)
		return
	}
	redirect(c, sc, manageUsersPath, email+" is now "+string(status))
}
