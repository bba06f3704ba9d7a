package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"elite-decor-web/internal/models"
)

type CatalogService struct {
	backend CatalogBackend
	logger  zerolog.Logger
}

func NewCatalogService(backend CatalogBackend, logger zerolog.Logger) *CatalogService {
	return &CatalogService{backend: backend, logger: logger}
}

func (s *CatalogService) ListServices(ctx context.Context, filter models.ServiceFilter) ([]models.Service, error) {
	filter.SearchText = strings.TrimSpace(filter.SearchText)
	if filter.Category != "" && !filter.Category.Valid() {
		filter.Category = ""
	}
	services, err := s.backend.ListServices(ctx, filter)
	if err != nil {
		return nil, err
	}
	if services == nil {
		services = []models.Service{}
	}
	return services, nil
}

// FeaturedServices returns the first n services of the catalog.
func (s *CatalogService) FeaturedServices(ctx context.Context, n int) ([]models.Service, error) {
	services, err := s.ListServices(ctx, models.ServiceFilter{Limit: n})
	if err != nil {
		return nil, err
	}
	if len(services) > n {
		services = services[:n]
	}
	return services, nil
}

// TopDecorators returns up to n decorators as ranked by the backend.
func (s *CatalogService) TopDecorators(ctx context.Context, n int) ([]models.RoleAssignment, error) {
	decorators, err := s.backend.ListTopDecorators(ctx, n)
	if err != nil {
		return nil, err
	}
	out := make([]models.RoleAssignment, 0, len(decorators))
	for _, d := range decorators {
		if len(out) == n {
			break
		}
		out = append(out, d.Normalize())
	}
	return out, nil
}

// GetService returns a NotFound error when the id is unknown.
func (s *CatalogService) GetService(ctx context.Context, id string) (*models.Service, error) {
	return s.backend.GetService(ctx, id)
}

// ListCategories returns the categories that have at least one service, in
// enumeration order.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	services, err := s.backend.ListServices(ctx, models.ServiceFilter{})
	if err != nil {
		return nil, err
	}
	present := make(map[models.Category]bool, len(models.Categories))
	for _, svc := range services {
		present[svc.Category] = true
	}
	out := []models.Category{}
	for _, c := range models.Categories {
		if present[c] {
			out = append(out, c)
		}
	}
	return out, nil
}
