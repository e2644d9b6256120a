package handlers

import (
	"net"

	"github.com/gin-gonic/gin"

	"glarm/internal/authz"
	"glarm/pkg/response"
)

type reportLocationRequest struct {
	DeviceID  string  `json:"deviceId" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// handleReportLocation feeds a position fix into the geofence engine.
// Gated on location authorization: a denied capability surfaces to the
// caller instead of silently dropping the fix.
func (h *Handlers) handleReportLocation(c *gin.Context) {
	var req reportLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}

	status, err := h.gate.Request(c.Request.Context(), authz.CapabilityLocation)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if status != authz.StatusAuthorized {
		response.Fail(c, "location permission refused", gin.H{"status": status})
		return
	}

	fired, err := h.engine.Report(c.Request.Context(), req.DeviceID, req.Latitude, req.Longitude)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"fired": fired})
}

// handleSuggestLocation returns a coarse coordinate for the client IP from
// the GeoIP database, for the "use my location" default.
func (h *Handlers) handleSuggestLocation(c *gin.Context) {
	if h.geoip == nil {
		response.Fail(c, "geoip database not configured", nil)
		return
	}
	ip := net.ParseIP(c.ClientIP())
	if ip == nil {
		response.Fail(c, "cannot determine client ip", nil)
		return
	}
	city, err := h.geoip.City(ip)
	if err != nil {
		response.Fail(c, "geoip lookup failed", gin.H{"error": err.Error()})
		return
	}
	response.Success(c, "ok", gin.H{
		"latitude":  city.Location.Latitude,
		"longitude": city.Location.Longitude,
		"accuracy":  city.Location.AccuracyRadius,
	})
}
