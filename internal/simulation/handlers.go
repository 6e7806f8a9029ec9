package simulation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for simulation sessions.
type Handler struct {
	service *Service
}

// NewHandler creates a new simulation handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up simulation routes under the given group.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/simulations", h.CreateSession)
	r.GET("/simulations/:id", h.GetSession)
	r.PATCH("/simulations/:id/params", h.UpdateParams)
	r.POST("/simulations/:id/reset", h.ResetSession)
	r.DELETE("/simulations/:id", h.DeleteSession)
}

// CreateSession handles POST /v1/simulations
func (h *Handler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetSession handles GET /v1/simulations/:id
func (h *Handler) GetSession(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No simulation session with this ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// UpdateParams handles PATCH /v1/simulations/:id/params
//
// Any subset of the five parameters may be sent; the result is recomputed
// once from the complete updated vector. Out-of-range values are clamped,
// not rejected.
func (h *Handler) UpdateParams(c *gin.Context) {
	var patch ParamPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be a JSON object of numeric parameters",
		})
		return
	}

	session, err := h.service.UpdateParams(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyPatch):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_request",
				"message": "At least one parameter is required",
			})
		case errors.Is(err, ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No simulation session with this ID",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ResetSession handles POST /v1/simulations/:id/reset
func (h *Handler) ResetSession(c *gin.Context) {
	session, err := h.service.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No simulation session with this ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DeleteSession handles DELETE /v1/simulations/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No simulation session with this ID",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "session deleted"})
}
