package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/oschwald/geoip2-golang"
	"gorm.io/gorm"

	"glarm/internal/alarms"
	"glarm/internal/authz"
	"glarm/internal/geofence"
	"glarm/internal/handoff"
	"glarm/internal/models"
	"glarm/pkg/config"
	"glarm/pkg/metrics"
	"glarm/pkg/middleware"
	"glarm/pkg/sse"
)

type Handlers struct {
	db      *gorm.DB
	manager *alarms.Manager
	gate    *authz.Gate
	engine  *geofence.Engine
	handoff *handoff.Publisher
	hub     *sse.Hub
	geoip   *geoip2.Reader // nil when no database is configured

	// drafts created but not yet scheduled; durable only on first schedule
	draftMu sync.Mutex
	drafts  map[uuid.UUID]*models.Alarm
}

func NewHandlers(db *gorm.DB, manager *alarms.Manager, gate *authz.Gate, engine *geofence.Engine, pub *handoff.Publisher, hub *sse.Hub, geoip *geoip2.Reader) *Handlers {
	return &Handlers{
		db:      db,
		manager: manager,
		gate:    gate,
		engine:  engine,
		handoff: pub,
		hub:     hub,
		geoip:   geoip,
		drafts:  make(map[uuid.UUID]*models.Alarm),
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.HealthCheck)
	engine.GET("/metrics", metrics.Handler())

	r := engine.Group(config.GlobalConfig.APIPrefix)
	r.Use(middleware.InjectDB(h.db))

	alarmGroup := r.Group("/alarms")
	{
		alarmGroup.POST("", h.handleCreateAlarm)
		alarmGroup.GET("", h.handleBrowseAlarms)
		alarmGroup.GET("/:id", h.handleGetAlarm)
		alarmGroup.PUT("/:id", h.handleUpdateAlarm)
		alarmGroup.DELETE("/:id", h.handleDeleteAlarm)
		alarmGroup.POST("/:id/schedule", h.handleScheduleAlarm)
		alarmGroup.POST("/:id/cancel", h.handleCancelAlarm)
		alarmGroup.PUT("/:id/category", h.handleAssignCategory)
	}

	categoryGroup := r.Group("/categories")
	{
		categoryGroup.GET("", h.handleListCategories)
		categoryGroup.POST("", h.handleCreateCategory)
		categoryGroup.DELETE("/:name", h.handleRemoveCategory)
	}

	r.POST("/locations/report", h.handleReportLocation)
	r.GET("/location/suggest", h.handleSuggestLocation)

	r.GET("/handoff", h.handleGetHandoff)
	r.GET("/handoff/stream", h.handleHandoffStream)

	r.GET("/authorization/:capability", h.handleGetAuthorization)
	r.POST("/authorization/:capability", h.handleRequestAuthorization)
}

func (h *Handlers) draft(id uuid.UUID) (*models.Alarm, bool) {
	h.draftMu.Lock()
	defer h.draftMu.Unlock()
	a, ok := h.drafts[id]
	return a, ok
}

func (h *Handlers) putDraft(a *models.Alarm) {
	h.draftMu.Lock()
	h.drafts[a.ID] = a
	h.draftMu.Unlock()
}

func (h *Handlers) dropDraft(id uuid.UUID) {
	h.draftMu.Lock()
	delete(h.drafts, id)
	h.draftMu.Unlock()
}

// findAlarm looks in the store first, then in the draft registry.
func (h *Handlers) findAlarm(id uuid.UUID) (*models.Alarm, error) {
	alarm, err := models.GetAlarm(h.db, id)
	if err == nil {
		return alarm, nil
	}
	if draft, ok := h.draft(id); ok {
		return draft, nil
	}
	return nil, err
}
