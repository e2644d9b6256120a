package alarms

import (
	"context"
	"time"

	"go.uber.org/zap"

	"glarm/internal/models"
	"glarm/pkg/logger"
)

// PruneOrphans removes pending requests whose alarm record no longer exists.
// Divergence between persisted and pending sets is normal steady state for
// fired or deleted alarms; this only reaps registrations older than maxAge
// that nothing can ever resolve again.
func (m *Manager) PruneOrphans(ctx context.Context, maxAge time.Duration) error {
	reqs, err := m.center.PendingRequests(ctx)
	if err != nil {
		return err
	}
	alarms, err := models.GetAllAlarms(m.db)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(alarms))
	for _, alarm := range alarms {
		known[alarm.ID.String()] = struct{}{}
	}

	cutoff := time.Now().Add(-maxAge)
	var stale []string
	for _, req := range reqs {
		if _, ok := known[req.ID]; ok {
			continue
		}
		if req.AddedAt.Before(cutoff) {
			stale = append(stale, req.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}
	m.center.Remove(ctx, stale...)
	logger.Info("pruned orphan pending requests", zap.Int("count", len(stale)))
	m.refreshHandoff(ctx)
	return nil
}
