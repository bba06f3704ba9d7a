package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"elite-decor-web/internal/models"
	"elite-decor-web/internal/services"
)

const (
	featuredCount     = 6
	topDecoratorCount = 6
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func filterFrom(c *gin.Context) models.ServiceFilter {
	return models.ServiceFilter{
		SearchText: c.Query("search"),
		Category:   models.Category(c.Query("category")),
		Sort:       models.ParseSortOrder(c.Query("sort")),
	}
}

// Home shows a few featured services and the top decorators. Without
// decorators the page still renders; without services it is an error.
func (h *CatalogHandler) Home(c *gin.Context) {
	view := models.View{Title: "Elite Decor"}

	var featured []models.Service
	decorators := []models.RoleAssignment{}
	var g errgroup.Group
	g.Go(func() (err error) {
		featured, err = h.catalog.FeaturedServices(c.Request.Context(), featuredCount)
		return err
	})
	g.Go(func() error {
		top, err := h.catalog.TopDecorators(c.Request.Context(), topDecoratorCount)
		if err != nil {
			_ = c.Error(err)
			return nil
		}
		decorators = top
		return nil
	})
	if err := g.Wait(); err != nil {
		view.Data = gin.H{"featured": []models.Service{}, "topDecorators": decorators}
		renderError(c, err, view)
		return
	}
	view.Data = gin.H{"featured": featured, "topDecorators": decorators}
	render(c, http.StatusOK, view)
}

func (h *CatalogHandler) About(c *gin.Context) {
	render(c, http.StatusOK, models.View{Title: "About us"})
}

func (h *CatalogHandler) Contact(c *gin.Context) {
	render(c, http.StatusOK, models.View{Title: "Contact"})
}

// ListServices godoc
// @Summary     Service catalog
// @Description Lists services filtered by search text, category and price sort
// @Tags        catalog
// @Produce     json
// @Param       search   query string false "Search text"
// @Param       category query string false "wedding, home, office, seminar or meeting"
// @Param       sort     query string false "price_asc or price_desc"
// @Success     200 {object} models.View
// @Router      /services [get]
func (h *CatalogHandler) ListServices(c *gin.Context) {
	filter := filterFrom(c)
	page := models.CatalogPage{Filter: filter}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		list, err := h.catalog.ListServices(ctx, filter)
		page.Services = list
		return err
	})
	g.Go(func() error {
		categories, err := h.catalog.ListCategories(ctx)
		page.Categories = categories
		return err
	})
	err := g.Wait()
	if page.Services == nil {
		page.Services = []models.Service{}
	}
	if page.Categories == nil {
		page.Categories = []models.Category{}
	}

	view := models.View{Title: "Our services", Data: page}
	if err != nil {
		renderError(c, err, view)
		return
	}
	render(c, http.StatusOK, view)
}

func (h *CatalogHandler) GetService(c *gin.Context) {
	service, err := h.catalog.GetService(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err, models.View{Title: "Service"})
		return
	}
	render(c, http.StatusOK, models.View{Title: service.Name, Data: gin.H{"service": service}})
}
