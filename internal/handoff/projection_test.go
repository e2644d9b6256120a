package handoff

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"glarm/internal/models"
	"glarm/internal/notify"
	"glarm/pkg/cache"
	"glarm/pkg/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("", "", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Alarm{}))
	return db
}

type recordingHub struct {
	events []string
}

func (h *recordingHub) Broadcast(event string, _ interface{}) {
	h.events = append(h.events, event)
}

func saveScheduled(t *testing.T, db *gorm.DB, center notify.Center, name string, createdAgo time.Duration) *models.Alarm {
	t.Helper()
	alarm := models.NewAlarm()
	alarm.Location = models.LocationInfo{Name: name, Latitude: 1, Longitude: 2, Radius: 400}
	alarm.Note = "note for " + name
	alarm.DateCreated = time.Now().Add(-createdAgo)
	require.NoError(t, models.SaveAlarm(db, alarm))
	require.NoError(t, center.Add(context.Background(), notify.Request{ID: alarm.ID.String()}))
	return alarm
}

func TestRefreshPublishesMostRecentActive(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	shared := cache.NewLocalCache(cache.LocalConfig{CleanupInterval: time.Minute})
	defer shared.Close()
	hub := &recordingHub{}
	pub := NewPublisher(db, center, shared, hub, "handoff:test")
	ctx := context.Background()

	older := saveScheduled(t, db, center, "Older", 2*time.Hour)
	newer := saveScheduled(t, db, center, "Newer", time.Hour)
	_ = older

	// a past alarm must not win even if newest
	past := models.NewAlarm()
	past.Location = models.LocationInfo{Name: "Past", Radius: 100}
	require.NoError(t, models.SaveAlarm(db, past))

	require.NoError(t, pub.Refresh(ctx))

	proj, ok := pub.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, newer.ID.String(), proj.Identifier)
	assert.Equal(t, "Newer", proj.LocationInfo.Name)
	assert.Equal(t, "note for Newer", proj.Note)
	assert.Equal(t, []string{"handoff"}, hub.events)
}

func TestRefreshClearsWhenNoActiveAlarms(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	shared := cache.NewLocalCache(cache.LocalConfig{CleanupInterval: time.Minute})
	defer shared.Close()
	hub := &recordingHub{}
	pub := NewPublisher(db, center, shared, hub, "handoff:test")
	ctx := context.Background()

	alarm := saveScheduled(t, db, center, "Home", time.Hour)
	require.NoError(t, pub.Refresh(ctx))
	_, ok := pub.Current(ctx)
	require.True(t, ok)

	center.Remove(ctx, alarm.ID.String())
	require.NoError(t, pub.Refresh(ctx))

	_, ok = pub.Current(ctx)
	assert.False(t, ok, "projection cleared when active set empties")
	assert.Equal(t, []string{"handoff", "handoff-cleared"}, hub.events)
}

func TestCurrentWithoutRefresh(t *testing.T) {
	db := testDB(t)
	shared := cache.NewLocalCache(cache.LocalConfig{CleanupInterval: time.Minute})
	defer shared.Close()
	pub := NewPublisher(db, notify.NewCenter(nil), shared, nil, "handoff:test")

	_, ok := pub.Current(context.Background())
	assert.False(t, ok)
}
