package clients

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsehq/clientpulse/internal/logging"
	"github.com/pulsehq/clientpulse/internal/simulation"
)

// EventEmitter receives directory change notifications. Implementations must
// not block; failures stay on the emitter's side.
type EventEmitter interface {
	ClientUpdated(client *Client)
}

// Handler provides HTTP handlers for the client directory API
type Handler struct {
	store  Store
	events EventEmitter
}

// NewHandler creates a new directory handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// WithEvents attaches an emitter notified after successful directory updates.
func (h *Handler) WithEvents(events EventEmitter) *Handler {
	h.events = events
	return h
}

// RegisterRoutes sets up the directory routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/clients", h.ListClients)
	r.GET("/clients/stats", h.GetStats)
	r.GET("/clients/:id", h.GetClient)
	r.PUT("/clients/:id/params", h.UpdateClientParams)
}

// ListClients handles GET /clients
func (h *Handler) ListClients(c *gin.Context) {
	ctx := c.Request.Context()

	query := Query{
		Segment:   Segment(c.Query("segment")),
		RiskLevel: simulation.RiskLevel(c.Query("risk")),
		Industry:  c.Query("industry"),
		Limit:     parseIntQuery(c, "limit", 100),
		Offset:    parseIntQuery(c, "offset", 0),
	}

	list, err := h.store.List(ctx, query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to list clients",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": list,
		"count":   len(list),
	})
}

// GetClient handles GET /clients/:id
func (h *Handler) GetClient(c *gin.Context) {
	client, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Client not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to get client",
		})
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClientParams handles PUT /clients/:id/params
//
// Replaces the full engagement parameter vector; scores are rederived by the
// engine before the client is returned.
func (h *Handler) UpdateClientParams(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.L(ctx)

	var params simulation.Params
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be the full parameter vector",
		})
		return
	}

	client, err := h.store.UpdateParams(ctx, c.Param("id"), params.Clamped())
	if err != nil {
		if errors.Is(err, ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "Client not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to update client",
		})
		return
	}

	logger.Info("client params updated",
		"client_id", client.ID,
		"churn_risk", client.Result.ChurnRisk,
		"risk_level", client.Result.RiskLevel,
	)

	if h.events != nil {
		h.events.ClientUpdated(client)
	}

	c.JSON(http.StatusOK, client)
}

// GetStats handles GET /clients/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Failed to aggregate directory",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parseIntQuery(c *gin.Context, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		var i int
		if _, err := fmt.Sscanf(val, "%d", &i); err == nil && i > 0 {
			return i
		}
	}
	return defaultVal
}
