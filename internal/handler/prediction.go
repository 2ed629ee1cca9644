package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bits/internal/domain"
	"bits/internal/service"
)

// PredictionHandler serves traffic predictions and the demand forecast.
type PredictionHandler struct {
	predictionService *service.PredictionService
	conditionsService *service.ConditionsService
	now               func() time.Time
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictionService *service.PredictionService, conditionsService *service.ConditionsService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		conditionsService: conditionsService,
		now:               time.Now,
	}
}

// WithClock sets the clock the handler reads the current time from.
func (h *PredictionHandler) WithClock(now func() time.Time) *PredictionHandler {
	h.now = now
	return h
}

// PredictionsResponse is the HTTP response for all zone predictions.
type PredictionsResponse struct {
	Predictions     []domain.Prediction `json:"predictions"`
	HighRiskZones   []string            `json:"high_risk_zones"`
	Recommendations []string            `json:"recommendations"`
}

// DemandResponse is the HTTP response for the hourly demand forecast.
type DemandResponse struct {
	IsPeak bool                 `json:"is_peak"`
	IsRain bool                 `json:"is_rain"`
	Hours  []domain.DemandPoint `json:"hours"`
}

// GetAll handles GET /v1/predictions
func (h *PredictionHandler) GetAll(c *gin.Context) {
	predictions := h.predictionService.AllPredictions(h.now())
	highRisk := service.Recommendations(predictions)

	advice := []string{}
	if len(highRisk) > 0 {
		advice = append(advice,
			"Increase available drivers by 50%",
			"Avoid routes through the high-risk zones",
		)
	}

	respondJSON(c, http.StatusOK, PredictionsResponse{
		Predictions:     predictions,
		HighRiskZones:   highRisk,
		Recommendations: advice,
	})
}

// GetZone handles GET /v1/predictions/:zone
func (h *PredictionHandler) GetZone(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.predictionService.PredictTraffic(c.Param("zone"), h.now()))
}

// GetDemand handles GET /v1/demand
func (h *PredictionHandler) GetDemand(c *gin.Context) {
	cond := h.conditionsService.Current(c.Request.Context(), h.now())
	isRain := cond.Weather.IsRain()

	respondJSON(c, http.StatusOK, DemandResponse{
		IsPeak: cond.IsPeak,
		IsRain: isRain,
		Hours:  service.DemandForecast(cond.IsPeak, isRain),
	})
}
