package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"glarm/internal/authz"
	"glarm/pkg/response"
)

// HealthCheck 健康检查接口
func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func parseCapability(raw string) (authz.Capability, bool) {
	switch authz.Capability(raw) {
	case authz.CapabilityLocation:
		return authz.CapabilityLocation, true
	case authz.CapabilityNotifications:
		return authz.CapabilityNotifications, true
	}
	return "", false
}

func (h *Handlers) handleGetAuthorization(c *gin.Context) {
	capability, ok := parseCapability(c.Param("capability"))
	if !ok {
		response.Fail(c, "unknown capability", nil)
		return
	}
	response.Success(c, "ok", gin.H{"status": h.gate.Status(capability)})
}

// handleRequestAuthorization triggers the prompt for an undetermined
// capability. Denied comes back to the caller; recovery is theirs.
func (h *Handlers) handleRequestAuthorization(c *gin.Context) {
	capability, ok := parseCapability(c.Param("capability"))
	if !ok {
		response.Fail(c, "unknown capability", nil)
		return
	}
	status, err := h.gate.Request(c.Request.Context(), capability)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"status": status})
}
