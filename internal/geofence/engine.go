// Package geofence evaluates reported device positions against the pending
// circular regions and fires entry notifications.
package geofence

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"glarm/internal/notify"
	"glarm/pkg/cache"
	"glarm/pkg/logger"
	"glarm/pkg/metrics"
)

const earthRadiusMeters = 6371000

// Engine detects entry transitions. Inside/outside state per device and
// region lives in the shared cache so restarts do not re-fire regions a
// device is already inside of.
type Engine struct {
	center notify.Center
	state  cache.Cache
	onFire func(ctx context.Context) // optional, e.g. handoff refresh
}

func NewEngine(center notify.Center, state cache.Cache, onFire func(ctx context.Context)) *Engine {
	return &Engine{center: center, state: state, onFire: onFire}
}

// Report evaluates one position fix. Returns the identifiers fired by this
// fix. A region fires on the outside-to-inside transition only; repeating
// regions re-arm once the device leaves again.
func (e *Engine) Report(ctx context.Context, deviceID string, lat, lon float64) ([]string, error) {
	reqs, err := e.center.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}

	var fired []string
	for _, req := range reqs {
		if !req.Trigger.NotifyOnEntry {
			continue
		}
		dist := Haversine(lat, lon, req.Trigger.Latitude, req.Trigger.Longitude)
		inside := dist <= req.Trigger.Radius

		key := stateKey(deviceID, req.ID)
		wasInside := e.state.Exists(ctx, key)

		switch {
		case inside && !wasInside:
			if err := e.center.Fire(ctx, req.ID); err != nil {
				logger.Warn("geofence fire failed", zap.String("id", req.ID), zap.Error(err))
				continue
			}
			metrics.NotificationsFired.Inc()
			fired = append(fired, req.ID)
			_ = e.state.Set(ctx, key, true, 0)
		case !inside && wasInside:
			_ = e.state.Delete(ctx, key)
		}
	}

	if len(fired) > 0 && e.onFire != nil {
		e.onFire(ctx)
	}
	return fired, nil
}

func stateKey(deviceID, regionID string) string {
	return fmt.Sprintf("geofence:inside:%s:%s", deviceID, regionID)
}

// Haversine returns the great-circle distance in meters.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
