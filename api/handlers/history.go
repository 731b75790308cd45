package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenhealth/ops-engine/internal/engine"
)

type HistoryHandler struct {
	engine       *engine.Engine
	defaultLimit int
	maxLimit     int
}

func NewHistoryHandler(eng *engine.Engine, defaultLimit, maxLimit int) *HistoryHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 500
	}
	return &HistoryHandler{
		engine:       eng,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// List godoc
// @Summary Get telemetry history
// @Description Get recent in-memory telemetry points, oldest first
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of points"
// @Success 200 {object} map[string]interface{} "History points"
// @Failure 400 {object} map[string]string "Invalid limit"
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	limit := h.defaultLimit

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	points := h.engine.History(limit)

	c.JSON(http.StatusOK, gin.H{
		"history": points,
		"count":   len(points),
	})
}
