package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"glarm/internal/models"
	"glarm/pkg/response"
)

type alarmRequest struct {
	LocationInfo *models.LocationInfo `json:"locationInfo"`
	Note         *string              `json:"note"`
	SoundName    *string              `json:"soundName"`
	IsMarked     *bool                `json:"isMarked"`
	IsRecurring  *bool                `json:"isRecurring"`
}

func (r *alarmRequest) apply(alarm *models.Alarm) {
	if r.LocationInfo != nil {
		alarm.Location = *r.LocationInfo
	}
	if r.Note != nil {
		alarm.Note = *r.Note
	}
	if r.SoundName != nil {
		alarm.SoundName = *r.SoundName
	}
	if r.IsMarked != nil {
		alarm.IsMarked = *r.IsMarked
	}
	if r.IsRecurring != nil {
		alarm.IsRecurring = *r.IsRecurring
	}
}

// handleCreateAlarm opens a draft. The record stays in memory until the
// first successful schedule makes it durable.
func (h *Handlers) handleCreateAlarm(c *gin.Context) {
	var req alarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	alarm := models.NewAlarm()
	req.apply(alarm)
	h.putDraft(alarm)
	response.Success(c, "draft created", gin.H{"alarm": alarm})
}

func (h *Handlers) handleGetAlarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"alarm": alarm})
}

func (h *Handlers) handleUpdateAlarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	var req alarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	req.apply(alarm)
	if alarm.IsSaved {
		if err := models.SaveAlarm(h.db, alarm); err != nil {
			response.FailWithError(c, err)
			return
		}
	}
	response.Success(c, "updated", gin.H{"alarm": alarm})
}

// handleBrowseAlarms returns the classified browse list, re-derived on
// every call.
func (h *Handlers) handleBrowseAlarms(c *gin.Context) {
	browse, err := h.manager.FetchAlarms(c.Request.Context())
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "ok", gin.H{"browse": browse})
}

func (h *Handlers) handleScheduleAlarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if err := h.manager.Schedule(c.Request.Context(), alarm); err != nil {
		response.FailWithError(c, err)
		return
	}
	h.dropDraft(id)
	response.Success(c, "scheduled", gin.H{"alarm": alarm})
}

func (h *Handlers) handleCancelAlarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	h.manager.Cancel(c.Request.Context(), alarm)
	response.Success(c, "cancelled", nil)
}

// handleDeleteAlarm deletes the record; ?cancel=true also removes the
// pending notification. Discarding a never-saved draft just drops it.
func (h *Handlers) handleDeleteAlarm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	if draft, ok := h.draft(id); ok && !draft.IsSaved {
		h.dropDraft(id)
		response.Success(c, "draft discarded", nil)
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if c.Query("cancel") == "true" {
		err = h.manager.DeleteAndCancel(c.Request.Context(), alarm)
	} else {
		err = h.manager.Delete(c.Request.Context(), alarm)
	}
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "deleted", nil)
}

type assignCategoryRequest struct {
	Category *string `json:"category"` // null detaches
}

func (h *Handlers) handleAssignCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, "invalid alarm id", nil)
		return
	}
	var req assignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, "invalid request", gin.H{"error": err.Error()})
		return
	}
	alarm, err := h.findAlarm(id)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if err := models.AssignCategory(h.db, alarm, req.Category); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.Success(c, "category assigned", gin.H{"alarm": alarm})
}
