// Package handoff publishes a small projection of the most recent active
// alarm to the shared cache and an SSE stream, so companion surfaces can
// render without querying the full store.
package handoff

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"glarm/internal/models"
	"glarm/internal/notify"
	"glarm/pkg/cache"
	"glarm/pkg/errors"
)

// Projection is the serializable cross-process payload.
type Projection struct {
	Identifier   string              `json:"identifier"`
	DateCreated  time.Time           `json:"dateCreated"`
	LocationInfo models.LocationInfo `json:"locationInfo"`
	Note         string              `json:"note"`
}

// Broadcaster pushes live updates to connected companion surfaces.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

type Publisher struct {
	db     *gorm.DB
	center notify.Center
	cache  cache.Cache
	hub    Broadcaster
	key    string
}

// NewPublisher wires the projection pipeline. hub may be nil.
func NewPublisher(db *gorm.DB, center notify.Center, c cache.Cache, hub Broadcaster, key string) *Publisher {
	return &Publisher{db: db, center: center, cache: c, hub: hub, key: key}
}

// Refresh recomputes the projection from the current active set. Called
// whenever the active alarm set may have changed.
func (p *Publisher) Refresh(ctx context.Context) error {
	pending, err := p.center.PendingIdentifiers(ctx)
	if err != nil {
		return errors.Wrap(err, "pending identifiers")
	}
	alarms, err := models.GetAllAlarms(p.db)
	if err != nil {
		return err
	}

	var latest *models.Alarm
	for _, alarm := range alarms {
		if _, ok := pending[alarm.ID.String()]; !ok {
			continue
		}
		if latest == nil || alarm.DateCreated.After(latest.DateCreated) {
			latest = alarm
		}
	}

	if latest == nil {
		if err := p.cache.Delete(ctx, p.key); err != nil {
			return errors.Wrap(err, "clear handoff")
		}
		if p.hub != nil {
			p.hub.Broadcast("handoff-cleared", nil)
		}
		return nil
	}

	proj := Projection{
		Identifier:   latest.ID.String(),
		DateCreated:  latest.DateCreated,
		LocationInfo: latest.Location,
		Note:         latest.Note,
	}
	data, err := json.Marshal(proj)
	if err != nil {
		return errors.Wrap(err, "marshal projection")
	}
	// stored as a JSON string so local and redis backends agree on shape
	if err := p.cache.Set(ctx, p.key, string(data), 0); err != nil {
		return errors.Wrap(err, "write handoff")
	}
	if p.hub != nil {
		p.hub.Broadcast("handoff", proj)
	}
	return nil
}

// Current reads the published projection, if any.
func (p *Publisher) Current(ctx context.Context) (*Projection, bool) {
	v, ok := p.cache.Get(ctx, p.key)
	if !ok {
		return nil, false
	}
	raw, ok := v.(string)
	if !ok {
		return nil, false
	}
	var proj Projection
	if err := json.Unmarshal([]byte(raw), &proj); err != nil {
		return nil, false
	}
	return &proj, true
}
