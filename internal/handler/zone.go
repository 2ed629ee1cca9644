package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bits/internal/domain"
	"bits/internal/geo"
	"bits/internal/repository"
	"bits/internal/zone"
)

// ZoneHandler serves the zone registry and reverse geocoding.
type ZoneHandler struct {
	registry *zone.Registry
}

// NewZoneHandler creates a new ZoneHandler.
func NewZoneHandler(registry *zone.Registry) *ZoneHandler {
	return &ZoneHandler{registry: registry}
}

// ZoneListResponse is the HTTP response for listing zones.
type ZoneListResponse struct {
	Zones    []domain.Zone    `json:"zones"`
	Hotspots []domain.Hotspot `json:"hotspots"`
}

// RegionZonesResponse is the HTTP response for zones in a region.
type RegionZonesResponse struct {
	Region string   `json:"region"`
	Zones  []string `json:"zones"`
}

// GetAll handles GET /v1/zones
func (h *ZoneHandler) GetAll(c *gin.Context) {
	respondJSON(c, http.StatusOK, ZoneListResponse{
		Zones:    h.registry.All(),
		Hotspots: h.registry.Hotspots(),
	})
}

// GetZone handles GET /v1/zones/:name
func (h *ZoneHandler) GetZone(c *gin.Context) {
	z, ok := h.registry.Lookup(c.Param("name"))
	if !ok {
		respondError(c, repository.ErrNotFound)
		return
	}
	respondJSON(c, http.StatusOK, z)
}

// GetRegionZones handles GET /v1/regions/:region/zones
func (h *ZoneHandler) GetRegionZones(c *gin.Context) {
	region := c.Param("region")
	respondJSON(c, http.StatusOK, RegionZonesResponse{
		Region: region,
		Zones:  h.registry.InRegion(domain.Region(region)),
	})
}

// ReverseGeocode handles GET /v1/geocode/reverse?lat=&lon=
func (h *ZoneHandler) ReverseGeocode(c *gin.Context) {
	lat, lon, err := queryCoordinates(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.registry.Nearest(lat, lon)
	if err != nil {
		respondError(c, err)
		return
	}
	result.DistanceKm = geo.Round(result.DistanceKm, 3)
	respondJSON(c, http.StatusOK, result)
}
