package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bits/internal/domain"
	"bits/internal/service"
)

// PricingHandler handles HTTP requests for quotes and live conditions.
type PricingHandler struct {
	pricingService    *service.PricingService
	conditionsService *service.ConditionsService
	sessionService    *service.SessionService
	logger            *zap.Logger
	now               func() time.Time
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(
	pricingService *service.PricingService,
	conditionsService *service.ConditionsService,
	sessionService *service.SessionService,
	logger *zap.Logger,
) *PricingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingHandler{
		pricingService:    pricingService,
		conditionsService: conditionsService,
		sessionService:    sessionService,
		logger:            logger,
		now:               time.Now,
	}
}

// WithClock sets the clock the handler reads the current time from.
func (h *PricingHandler) WithClock(now func() time.Time) *PricingHandler {
	h.now = now
	return h
}

// QuoteRequest is the HTTP request body for pricing a route.
type QuoteRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// QuoteResponse is the HTTP response for a priced route.
type QuoteResponse struct {
	Origin      string                `json:"origin"`
	Destination string                `json:"destination"`
	Fastest     domain.Quote          `json:"fastest"`
	Economic    domain.Quote          `json:"economic"`
	DistanceKm  float64               `json:"distance_km"`
	Condition   domain.SurgeCondition `json:"condition"`
}

// GetConditions handles GET /v1/conditions
func (h *PricingHandler) GetConditions(c *gin.Context) {
	respondJSON(c, http.StatusOK, h.conditionsService.Current(c.Request.Context(), h.now()))
}

// CreateQuote handles POST /v1/quotes
func (h *PricingHandler) CreateQuote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.pricingService.Quote(ctx, strings.TrimSpace(req.Origin), strings.TrimSpace(req.Destination), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	// The session record is display state; failing to save it does not
	// fail the quote.
	if h.sessionService != nil {
		state, err := h.sessionService.RecordQuote(ctx, c.GetHeader(sessionHeader), result.Route)
		if err != nil {
			h.logger.Warn("failed to record quote in session", zap.Error(err))
		} else {
			c.Header(sessionHeader, state.ID)
		}
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		Origin:      result.Route.Origin,
		Destination: result.Route.Destination,
		Fastest:     result.Route.Fastest,
		Economic:    result.Route.Economic,
		DistanceKm:  result.Route.DistanceKm,
		Condition:   result.Condition,
	})
}
