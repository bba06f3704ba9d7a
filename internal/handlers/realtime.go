package handlers

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"elite-decor-web/internal/apperr"
	"elite-decor-web/internal/backend"
	"elite-decor-web/internal/middleware"
	"elite-decor-web/internal/models"
	"elite-decor-web/internal/realtime"
	"elite-decor-web/internal/services"
	"elite-decor-web/internal/session"
)

type RealtimeHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	registry *session.Registry
	catalog  *services.CatalogService
	roles    *services.RoleResolver
	debounce time.Duration
	logger   zerolog.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, allowedOrigins []string, registry *session.Registry, catalog *services.CatalogService, roles *services.RoleResolver, debounce time.Duration, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:      hub,
		upgrader: realtime.NewUpgrader(allowedOrigins),
		registry: registry,
		catalog:  catalog,
		roles:    roles,
		debounce: debounce,
		logger:   logger.With().Str("component", "realtime").Logger(),
	}
}

// Connect godoc
// @Summary Open the session's live channel
// @Description Upgrades to a WebSocket carrying identity, role and search events
// @Tags realtime
// @Router /ws [get]
func (h *RealtimeHandler) Connect(c *gin.Context) {
	sc := middleware.SessionFrom(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	h.hub.Serve(conn, sc.ID, h.handle)
}

func (h *RealtimeHandler) handle(sessionID string, msg realtime.ClientMessage) {
	sc, ok := h.registry.Lookup(sessionID)
	if !ok {
		return
	}

	switch msg.Type {
	case realtime.MessageSearch:
		h.search(sc, msg)
	case realtime.MessageRefreshRole:
		h.refreshRole(sc)
	default:
		h.hub.Publish(sessionID, realtime.Event{
			Type:    realtime.EventError,
			Payload: models.ErrorResponse{Error: "unknown_message", Message: "unsupported message type " + msg.Type},
		})
	}
}

func (h *RealtimeHandler) search(sc *session.Context, msg realtime.ClientMessage) {
	sessionID := sc.ID
	closer := sc.Search(func() io.Closer {
		return services.NewSearchController(h.catalog, h.debounce, func(result services.SearchResult) {
			if result.Err != nil {
				h.hub.Publish(sessionID, realtime.Event{
					Type:    realtime.EventError,
					Payload: models.ErrorResponse{Error: apperr.KindOf(result.Err).String(), Message: apperr.MessageOf(result.Err)},
				})
				return
			}
			h.hub.Publish(sessionID, realtime.Event{Type: realtime.EventSearchResults, Payload: result})
		}, h.logger)
	})
	controller, ok := closer.(*services.SearchController)
	if !ok {
		return
	}
	controller.Apply(models.ServiceFilter{
		SearchText: msg.Text,
		Category:   models.Category(msg.Category),
		Sort:       models.ParseSortOrder(msg.Sort),
	})
}

func (h *RealtimeHandler) refreshRole(sc *session.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = backend.WithToken(ctx, sc.Tokens().AccessToken)

	assignment, err := h.roles.Refetch(ctx, sc)
	if err != nil {
		h.hub.Publish(sc.ID, realtime.Event{
			Type:    realtime.EventError,
			Payload: models.ErrorResponse{Error: apperr.KindOf(err).String(), Message: apperr.MessageOf(err)},
		})
		return
	}
	h.hub.Publish(sc.ID, realtime.Event{Type: realtime.EventRoleChanged, Payload: gin.H{"role": assignment.Role}})
}
