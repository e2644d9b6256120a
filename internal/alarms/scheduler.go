// Package alarms implements the alarm lifecycle: scheduling a geofence
// notification, cancelling it, and classifying the persisted set for the
// browse list.
package alarms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"glarm/internal/authz"
	"glarm/internal/models"
	"glarm/internal/notify"
	"glarm/pkg/errors"
	"glarm/pkg/metrics"
)

// HandoffPublisher is notified whenever the active alarm set changes.
type HandoffPublisher interface {
	Refresh(ctx context.Context) error
}

type Manager struct {
	db      *gorm.DB
	center  notify.Center
	gate    *authz.Gate
	handoff HandoffPublisher // optional
}

func NewManager(db *gorm.DB, center notify.Center, gate *authz.Gate, handoff HandoffPublisher) *Manager {
	return &Manager{db: db, center: center, gate: gate, handoff: handoff}
}

// Schedule registers the alarm's geofence notification and persists the
// record. Persistence and registration are one saga: if registration fails
// a fresh insert is rolled back, and if persistence fails the registration
// is cancelled.
func (m *Manager) Schedule(ctx context.Context, alarm *models.Alarm) error {
	if alarm == nil {
		return errors.WithCode(errors.CodeInvalidArgument, "alarm is nil")
	}
	if alarm.Location.IsZero() {
		metrics.SchedulesTotal.WithLabelValues("missing_location").Inc()
		return errors.WithCode(errors.CodeMissingLocationInfo, "alarm has no destination configured")
	}

	status, err := m.gate.Request(ctx, authz.CapabilityNotifications)
	if err != nil {
		return errors.Wrap(err, "notification authorization")
	}
	if status != authz.StatusAuthorized {
		metrics.SchedulesTotal.WithLabelValues("permission_denied").Inc()
		return errors.WithCode(errors.CodePermissionDenied, "notification permission refused")
	}

	req := buildRequest(alarm)

	// last write wins on duplicate identifiers
	pending, err := m.center.PendingIdentifiers(ctx)
	if err != nil {
		return errors.Wrap(err, "query pending requests")
	}
	if _, exists := pending[req.ID]; exists {
		m.center.Remove(ctx, req.ID)
	}

	wasSaved := alarm.IsSaved
	var previous *models.Alarm
	if wasSaved {
		if previous, err = models.GetAlarm(m.db, alarm.ID); err != nil {
			return err
		}
	}

	if err := models.SaveAlarm(m.db, alarm); err != nil {
		metrics.SchedulesTotal.WithLabelValues("store_error").Inc()
		return err
	}

	if err := m.center.Add(ctx, req); err != nil {
		// compensate the persistence side effect
		if !wasSaved {
			_ = models.DeleteAlarm(m.db, alarm)
		} else if previous != nil {
			_ = models.SaveAlarm(m.db, previous)
		}
		metrics.SchedulesTotal.WithLabelValues("register_error").Inc()
		return errors.Wrap(err, "register notification")
	}

	metrics.SchedulesTotal.WithLabelValues("ok").Inc()
	m.refreshHandoff(ctx)
	return nil
}

// Cancel removes the pending request. Fire-and-forget: a missing identifier
// is not an error, and the persisted record stays ("past" state).
func (m *Manager) Cancel(ctx context.Context, alarm *models.Alarm) {
	if alarm == nil {
		return
	}
	m.center.Remove(ctx, alarm.ID.String())
	metrics.CancelsTotal.Inc()
	m.refreshHandoff(ctx)
}

// Delete removes the persisted record only. Any pending notification stays
// registered; use DeleteAndCancel when deleting an active alarm.
func (m *Manager) Delete(ctx context.Context, alarm *models.Alarm) error {
	return models.DeleteAlarm(m.db, alarm)
}

// DeleteAndCancel removes both the pending request and the record. The two
// side effects are not transactional with each other; the cancel is
// best-effort and runs first.
func (m *Manager) DeleteAndCancel(ctx context.Context, alarm *models.Alarm) error {
	if alarm == nil {
		return errors.WithCode(errors.CodeInvalidArgument, "alarm is nil")
	}
	m.center.Remove(ctx, alarm.ID.String())
	if err := models.DeleteAlarm(m.db, alarm); err != nil {
		return err
	}
	m.refreshHandoff(ctx)
	return nil
}

func (m *Manager) refreshHandoff(ctx context.Context) {
	if m.handoff != nil {
		_ = m.handoff.Refresh(ctx)
	}
}

func buildRequest(alarm *models.Alarm) notify.Request {
	loc := alarm.Location
	body := fmt.Sprintf("You are within %s of %s", FormatDistance(loc.Radius), loc.Name)
	if note := strings.TrimSpace(alarm.Note); note != "" {
		body += "\n" + note
	}
	return notify.Request{
		ID: alarm.ID.String(),
		Payload: notify.Payload{
			Title: loc.Name,
			Body:  body,
			Sound: alarm.SoundName,
		},
		Trigger: notify.Trigger{
			Name:          loc.Name,
			Latitude:      loc.Latitude,
			Longitude:     loc.Longitude,
			Radius:        loc.Radius,
			NotifyOnEntry: true,
			NotifyOnExit:  false,
			Repeats:       alarm.IsRecurring,
		},
		AddedAt: time.Now(),
	}
}

// FormatDistance renders meters as a human-readable distance.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	km := meters / 1000
	s := fmt.Sprintf("%.1f", km)
	s = strings.TrimSuffix(s, ".0")
	return s + " km"
}
