package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/havenhealth/ops-engine/api/middleware"
	"github.com/havenhealth/ops-engine/internal/alerting"
	"github.com/havenhealth/ops-engine/internal/logger"
)

type AlertHandler struct {
	manager *alerting.Manager
}

func NewAlertHandler(manager *alerting.Manager) *AlertHandler {
	return &AlertHandler{manager: manager}
}

// List godoc
// @Summary List alerts
// @Description Get alerts newest first, optionally filtered to active only
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only unresolved alerts"
// @Param limit query int false "Maximum number of alerts"
// @Success 200 {object} map[string]interface{} "Alerts"
// @Router /alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	alerts := h.manager.Alerts()

	if active, _ := strconv.ParseBool(c.Query("active")); active {
		filtered := alerts[:0]
		for _, a := range alerts {
			if !a.Resolved {
				filtered = append(filtered, a)
			}
		}
		alerts = filtered
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit < len(alerts) {
			alerts = alerts[:limit]
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// Get godoc
// @Summary Get alert
// @Description Get a single alert by ID
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} models.Alert "Alert"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id} [get]
func (h *AlertHandler) Get(c *gin.Context) {
	alert, err := h.manager.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.JSON(http.StatusOK, alert)
}

// Acknowledge godoc
// @Summary Acknowledge alert
// @Description Mark an alert as acknowledged by an operator
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} map[string]string "Acknowledged"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id}/ack [post]
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id := c.Param("id")

	if err := h.manager.Acknowledge(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	logger.WithAlert(id).Infof("Acknowledged by %s", middleware.GetUsername(c))
	c.JSON(http.StatusOK, gin.H{"message": "alert acknowledged", "alert_id": id})
}

// Resolve godoc
// @Summary Resolve alert
// @Description Mark an alert as resolved; resolving twice is a no-op
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} map[string]string "Resolved"
// @Failure 404 {object} map[string]string "Alert not found"
// @Router /alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *gin.Context) {
	id := c.Param("id")

	if err := h.manager.Resolve(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	logger.WithAlert(id).Infof("Resolved by %s", middleware.GetUsername(c))
	c.JSON(http.StatusOK, gin.H{"message": "alert resolved", "alert_id": id})
}

// Execute godoc
// @Summary Execute recommendation
// @Description Trigger an automated recommendation attached to an alert
// @Tags Alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Param recId path string true "Recommendation ID"
// @Success 202 {object} map[string]string "Execution started"
// @Failure 404 {object} map[string]string "Alert or recommendation not found"
// @Failure 409 {object} map[string]string "Recommendation not executable"
// @Router /alerts/{id}/recommendations/{recId}/execute [post]
func (h *AlertHandler) Execute(c *gin.Context) {
	alertID := c.Param("id")
	recID := c.Param("recId")

	err := h.manager.ExecuteRecommendation(alertID, recID)
	if err != nil {
		if errors.Is(err, alerting.ErrNotExecutable) {
			c.JSON(http.StatusConflict, gin.H{"error": "recommendation is not executable"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "alert or recommendation not found"})
		return
	}

	logger.WithAlert(alertID).Infof("Execution of %s requested by %s", recID, middleware.GetUsername(c))
	c.JSON(http.StatusAccepted, gin.H{
		"message":           "execution started",
		"alert_id":          alertID,
		"recommendation_id": recID,
	})
}
