package handlers

import (
	"github.com/gin-gonic/gin"

	"glarm/pkg/response"
)

func (h *Handlers) handleGetHandoff(c *gin.Context) {
	proj, ok := h.handoff.Current(c.Request.Context())
	if !ok {
		response.Success(c, "no active alarm", gin.H{"handoff": nil})
		return
	}
	response.Success(c, "ok", gin.H{"handoff": proj})
}

// handleHandoffStream streams projection updates over SSE so the companion
// surface can render without polling.
func (h *Handlers) handleHandoffStream(c *gin.Context) {
	h.hub.Serve(c)
}
