package config

import (
	"log"
	"os"

	"glarm/pkg/cache"
	"glarm/pkg/logger"
	"glarm/pkg/util"
)

type Config struct {
	Addr      string `env:"ADDR"`
	Mode      string `env:"MODE"`
	APIPrefix string `env:"API_PREFIX"`

	DBDriver string `env:"DB_DRIVER"`
	DSN      string `env:"DSN"`
	DBDebug  bool   `env:"DB_DEBUG"`

	Log   logger.LogConfig
	Cache cache.Config

	// Capability defaults for non-interactive deployments: when true the
	// authorization prompt auto-grants instead of auto-denying.
	AutoGrantLocation      bool `env:"AUTO_GRANT_LOCATION"`
	AutoGrantNotifications bool `env:"AUTO_GRANT_NOTIFICATIONS"`

	// Cross-process handoff
	HandoffKey string `env:"HANDOFF_KEY"`

	// GeoIP database for coarse coordinate suggestions; empty disables the endpoint.
	GeoIPPath string `env:"GEOIP_PATH"`

	// Retention: cron spec pruning long-fired one-shot requests.
	RetentionSchedule string `env:"RETENTION_SCHEDULE"`
	RetentionDays     int    `env:"RETENTION_DAYS"`

	BackupEnabled  bool   `env:"BACKUP_ENABLED"`
	BackupPath     string `env:"BACKUP_PATH"`
	BackupSchedule string `env:"BACKUP_SCHEDULE"`
}

var GlobalConfig *Config

func Load() error {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}
	if err := util.LoadEnv(env); err != nil {
		log.Printf("Failed to load .env file: %v", err)
	}

	GlobalConfig = &Config{
		Addr:      util.GetEnvDefault("ADDR", ":8080"),
		Mode:      util.GetEnvDefault("MODE", "debug"),
		APIPrefix: util.GetEnvDefault("API_PREFIX", "/api"),
		DBDriver:  util.GetEnv("DB_DRIVER"),
		DSN:       util.GetEnv("DSN"),
		DBDebug:   util.GetBoolEnv("DB_DEBUG"),
		Log: logger.LogConfig{
			Level:      util.GetEnv("LOG_LEVEL"),
			Filename:   util.GetEnv("LOG_FILENAME"),
			MaxSize:    int(util.GetIntEnv("LOG_MAX_SIZE")),
			MaxAge:     int(util.GetIntEnv("LOG_MAX_AGE")),
			MaxBackups: int(util.GetIntEnv("LOG_MAX_BACKUPS")),
		},
		Cache: cache.Config{
			Type: util.GetEnvDefault("CACHE_TYPE", "local"),
			Redis: cache.RedisConfig{
				Addr:     util.GetEnvDefault("REDIS_ADDR", "localhost:6379"),
				Password: util.GetEnv("REDIS_PASSWORD"),
				DB:       int(util.GetIntEnv("REDIS_DB")),
				PoolSize: int(util.GetIntEnv("REDIS_POOL_SIZE")),
			},
		},
		AutoGrantLocation:      util.GetBoolEnv("AUTO_GRANT_LOCATION"),
		AutoGrantNotifications: util.GetBoolEnv("AUTO_GRANT_NOTIFICATIONS"),
		HandoffKey:             util.GetEnvDefault("HANDOFF_KEY", "glarm:handoff:latest"),
		GeoIPPath:              util.GetEnv("GEOIP_PATH"),
		RetentionSchedule:      util.GetEnvDefault("RETENTION_SCHEDULE", "0 3 * * *"),
		RetentionDays:          int(util.GetIntEnv("RETENTION_DAYS")),
		BackupEnabled:          util.GetBoolEnv("BACKUP_ENABLED"),
		BackupPath:             util.GetEnvDefault("BACKUP_PATH", "./backups"),
		BackupSchedule:         util.GetEnvDefault("BACKUP_SCHEDULE", "0 4 * * *"),
	}
	return nil
}
