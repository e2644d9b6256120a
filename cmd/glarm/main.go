package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"

	"glarm/internal/alarms"
	"glarm/internal/authz"
	"glarm/internal/geofence"
	handlers "glarm/internal/handler"
	"glarm/internal/handoff"
	"glarm/internal/models"
	"glarm/internal/notify"
	"glarm/pkg/backup"
	"glarm/pkg/cache"
	"glarm/pkg/config"
	"glarm/pkg/logger"
	"glarm/pkg/metrics"
	"glarm/pkg/middleware"
	"glarm/pkg/scheduler"
	"glarm/pkg/sse"
	"glarm/pkg/util"
)

func main() {
	if err := config.Load(); err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	cfg := config.GlobalConfig

	if err := logger.Init(cfg.Log); err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := util.InitDatabase(cfg.DBDriver, cfg.DSN, cfg.DBDebug)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.Category{}, &models.Alarm{}); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	if err := models.SeedDefaultCategories(db); err != nil {
		logger.Fatal("seed categories", zap.Error(err))
	}

	shared, err := cache.NewCache(cfg.Cache)
	if err != nil {
		logger.Fatal("open cache", zap.Error(err))
	}
	defer shared.Close()

	hub := sse.NewHub(30 * time.Second)
	center := notify.NewCenter(notify.LogProvider{})
	gate := authz.NewGate(authz.AutoPrompter{Grant: map[authz.Capability]bool{
		authz.CapabilityLocation:      cfg.AutoGrantLocation,
		authz.CapabilityNotifications: cfg.AutoGrantNotifications,
	}})
	publisher := handoff.NewPublisher(db, center, shared, hub, cfg.HandoffKey)
	manager := alarms.NewManager(db, center, gate, publisher)
	engine := geofence.NewEngine(center, shared, func(ctx context.Context) {
		_ = publisher.Refresh(ctx)
	})

	var geoip *geoip2.Reader
	if cfg.GeoIPPath != "" {
		if geoip, err = geoip2.Open(cfg.GeoIPPath); err != nil {
			logger.Warn("geoip database unavailable", zap.Error(err))
			geoip = nil
		} else {
			defer geoip.Close()
		}
	}

	gin.SetMode(cfg.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), metrics.Middleware())

	h := handlers.NewHandlers(db, manager, gate, engine, publisher, hub, geoip)
	h.Register(router)

	// background jobs: periodic handoff sweep, nightly orphan pruning
	jobs := scheduler.New()
	defer jobs.Stop()
	jobs.Every(time.Minute, scheduler.FuncJob(func(ctx context.Context) {
		_ = publisher.Refresh(ctx)
	}))

	cr := scheduler.NewCron(nil)
	retentionDays := cfg.RetentionDays
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if _, err := cr.Add(cfg.RetentionSchedule, scheduler.FuncJob(func(ctx context.Context) {
		_ = manager.PruneOrphans(ctx, time.Duration(retentionDays)*24*time.Hour)
	})); err != nil {
		logger.Warn("retention schedule invalid", zap.Error(err))
	}
	if cfg.BackupEnabled {
		if _, err := cr.Add(cfg.BackupSchedule, scheduler.FuncJob(func(context.Context) {
			if err := backup.Execute(cfg.DBDriver, cfg.DSN, cfg.BackupPath); err != nil {
				logger.Warn("backup failed", zap.Error(err))
			} else {
				logger.Info("backup completed")
			}
		})); err != nil {
			logger.Warn("backup schedule invalid", zap.Error(err))
		}
	}
	cr.Start()
	defer cr.Stop()

	srv := &http.Server{Addr: cfg.Addr, Handler: router}
	go func() {
		logger.Info("glarm listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	s := <-interrupt
	logger.Info("shutting down", zap.String("signal", s.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
