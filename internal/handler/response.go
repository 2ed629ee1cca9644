package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bits/internal/repository"
	"bits/internal/service"
	"bits/internal/zone"
)

// sessionHeader carries the client's session id on requests and responses.
const sessionHeader = "X-Session-ID"

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Success: false, Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, zone.ErrInvalidCoordinates),
		errors.Is(err, service.ErrInvalidIncident),
		errors.Is(err, service.ErrInvalidIncidentID),
		errors.Is(err, service.ErrInvalidZone),
		errors.Is(err, service.ErrEmptyMessage):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrLedgerBusy):
		return http.StatusConflict

	// Storage faults and anything unexpected
	default:
		return http.StatusInternalServerError
	}
}

// queryFloat parses a float query parameter. Missing parameters return ok=false.
func queryFloat(c *gin.Context, name string) (float64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// queryCoordinates reads the lat and lon query parameters.
func queryCoordinates(c *gin.Context) (float64, float64, error) {
	lat, okLat, errLat := queryFloat(c, "lat")
	lon, okLon, errLon := queryFloat(c, "lon")
	if errLat != nil || errLon != nil || !okLat || !okLon {
		return 0, 0, zone.ErrInvalidCoordinates
	}
	return lat, lon, nil
}
