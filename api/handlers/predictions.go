package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenhealth/ops-engine/internal/engine"
	"github.com/havenhealth/ops-engine/pkg/models"
)

type PredictionHandler struct {
	engine *engine.Engine
}

func NewPredictionHandler(eng *engine.Engine) *PredictionHandler {
	return &PredictionHandler{engine: eng}
}

// List godoc
// @Summary List predictions
// @Description Get the latest forecast for every tracked resource
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Predictions keyed by resource"
// @Router /predictions [get]
func (h *PredictionHandler) List(c *gin.Context) {
	set := h.engine.Latest()

	c.JSON(http.StatusOK, gin.H{
		"predictions": set,
		"count":       len(set),
	})
}

// Get godoc
// @Summary Get resource prediction
// @Description Get the latest forecast for one resource, computing it on demand when absent
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource type" Enums(oxygen, beds, staff, emergency)
// @Success 200 {object} models.ResourcePrediction "Prediction"
// @Failure 400 {object} map[string]string "Unknown resource type"
// @Router /predictions/{resource} [get]
func (h *PredictionHandler) Get(c *gin.Context) {
	resource, err := models.ParseResourceType(c.Param("resource"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown resource type"})
		return
	}

	if prediction, ok := h.engine.Latest()[resource]; ok {
		c.JSON(http.StatusOK, prediction)
		return
	}

	prediction, err := h.engine.Forecast(resource)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute forecast"})
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// Refresh godoc
// @Summary Run forecast cycle
// @Description Recompute forecasts for all resources immediately
// @Tags Predictions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Fresh predictions"
// @Router /predictions/refresh [post]
func (h *PredictionHandler) Refresh(c *gin.Context) {
	set := h.engine.RunCycle()

	c.JSON(http.StatusOK, gin.H{
		"predictions": set,
		"count":       len(set),
	})
}
