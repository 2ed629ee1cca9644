package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bits/internal/domain"
	"bits/internal/service"
)

// DashboardHandler serves the operations hub snapshot.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, now: time.Now}
}

// WithClock sets the clock the handler reads the current time from.
func (h *DashboardHandler) WithClock(now func() time.Time) *DashboardHandler {
	h.now = now
	return h
}

// AlertResponse asks the client to sound a notification.
type AlertResponse struct {
	Kind       string  `json:"kind"`
	ToneHz     int     `json:"tone_hz"`
	Multiplier float64 `json:"multiplier"`
}

// DashboardResponse is the HTTP response for the operations hub.
type DashboardResponse struct {
	Time            string                `json:"time"`
	Condition       domain.SurgeCondition `json:"condition"`
	ActiveDrivers   int                   `json:"active_drivers"`
	NewDrivers      int                   `json:"new_drivers"`
	PendingOrders   int                   `json:"pending_orders"`
	NewOrders       int                   `json:"new_orders"`
	BaseFare        int64                 `json:"base_fare"`
	DisplayedFare   int64                 `json:"displayed_fare"`
	FareIncreasePct int                   `json:"fare_increase_pct"`
	ActiveIncidents int                   `json:"active_incidents"`
	TopIncidents    []IncidentResponse    `json:"top_incidents"`
	Alert           *AlertResponse        `json:"alert,omitempty"`
}

// GetSnapshot handles GET /v1/dashboard
func (h *DashboardHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.dashboardService.Snapshot(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}

	response := DashboardResponse{
		Time:            snap.Time.Format("15:04"),
		Condition:       snap.Condition,
		ActiveDrivers:   snap.ActiveDrivers,
		NewDrivers:      snap.NewDrivers,
		PendingOrders:   snap.PendingOrders,
		NewOrders:       snap.NewOrders,
		BaseFare:        snap.BaseFare,
		DisplayedFare:   snap.DisplayedFare,
		FareIncreasePct: snap.FareIncreasePct,
		ActiveIncidents: snap.ActiveIncidents,
		TopIncidents:    make([]IncidentResponse, 0, len(snap.TopIncidents)),
	}
	for _, i := range snap.TopIncidents {
		response.TopIncidents = append(response.TopIncidents, toIncidentResponse(i))
	}
	if snap.Alert != nil {
		response.Alert = &AlertResponse{
			Kind:       snap.Alert.Kind,
			ToneHz:     snap.Alert.ToneHz,
			Multiplier: snap.Alert.Multiplier,
		}
	}

	respondJSON(c, http.StatusOK, response)
}
