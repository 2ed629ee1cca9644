package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bits/internal/domain"
	"bits/internal/geo"
	"bits/internal/service"
)

// IncidentHandler handles HTTP requests for the incident ledger.
type IncidentHandler struct {
	incidentService *service.IncidentService
}

// NewIncidentHandler creates a new IncidentHandler.
func NewIncidentHandler(incidentService *service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentService: incidentService}
}

// AddIncidentRequest is the HTTP request body for recording an incident.
type AddIncidentRequest struct {
	Zone         string   `json:"zone"`
	Category     string   `json:"category"`
	Severity     string   `json:"severity"`
	Description  string   `json:"description"`
	Lat          *float64 `json:"lat,omitempty"`
	Lon          *float64 `json:"lon,omitempty"`
	AffectedRoad string   `json:"affected_road"`
}

// IncidentResponse is the HTTP representation of an incident.
type IncidentResponse struct {
	ID           int64   `json:"id"`
	Zone         string  `json:"zone"`
	Category     string  `json:"category"`
	Severity     string  `json:"severity"`
	Description  string  `json:"description"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	AffectedRoad string  `json:"affected_road"`
	CreatedAt    string  `json:"created_at"`
	Active       bool    `json:"active"`
	DistanceKm   float64 `json:"distance_km,omitempty"`
}

// AddIncidentResponse is the HTTP response for recording an incident.
type AddIncidentResponse struct {
	Success  bool             `json:"success"`
	Incident IncidentResponse `json:"incident"`
}

func toIncidentResponse(i *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:           i.ID,
		Zone:         i.Zone,
		Category:     string(i.Category),
		Severity:     string(i.Severity),
		Description:  i.Description,
		Lat:          i.Lat,
		Lon:          i.Lon,
		AffectedRoad: i.AffectedRoad,
		CreatedAt:    i.CreatedAt.Format(time.RFC3339),
		Active:       i.Active,
	}
}

// GetActive handles GET /v1/incidents
func (h *IncidentHandler) GetActive(c *gin.Context) {
	incidents, err := h.incidentService.ActiveIncidents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]IncidentResponse, 0, len(incidents))
	for _, i := range incidents {
		response = append(response, toIncidentResponse(i))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetCounts handles GET /v1/incidents/counts
func (h *IncidentHandler) GetCounts(c *gin.Context) {
	counts, err := h.incidentService.CountByZone(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, counts)
}

// GetNearby handles GET /v1/incidents/nearby?lat=&lon=&radius_km=
func (h *IncidentHandler) GetNearby(c *gin.Context) {
	lat, lon, err := queryCoordinates(c)
	if err != nil {
		respondError(c, err)
		return
	}
	radius, _, err := queryFloat(c, "radius_km")
	if err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
		return
	}

	nearby, err := h.incidentService.NearbyIncidents(c.Request.Context(), lat, lon, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]IncidentResponse, 0, len(nearby))
	for _, n := range nearby {
		r := toIncidentResponse(n.Incident)
		r.DistanceKm = geo.Round(n.DistanceKm, 3)
		response = append(response, r)
	}
	respondJSON(c, http.StatusOK, response)
}

// AddIncident handles POST /v1/admin/incidents
func (h *IncidentHandler) AddIncident(c *gin.Context) {
	var req AddIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondJSON(c, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	incident, err := h.incidentService.AddIncident(c.Request.Context(), service.AddIncidentRequest{
		Zone:         req.Zone,
		Category:     domain.IncidentCategory(req.Category),
		Severity:     domain.Severity(req.Severity),
		Description:  req.Description,
		Lat:          req.Lat,
		Lon:          req.Lon,
		AffectedRoad: req.AffectedRoad,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, AddIncidentResponse{
		Success:  true,
		Incident: toIncidentResponse(incident),
	})
}

// RemoveIncident handles DELETE /v1/admin/incidents/:id
func (h *IncidentHandler) RemoveIncident(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, service.ErrInvalidIncidentID)
		return
	}

	if err := h.incidentService.RemoveIncident(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"success": true})
}
