package alarms

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"glarm/internal/authz"
	"glarm/internal/models"
	"glarm/internal/notify"
	"glarm/pkg/errors"
	"glarm/pkg/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("", "", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Alarm{}))
	return db
}

func grantedGate() *authz.Gate {
	return authz.NewGate(authz.AutoPrompter{Grant: map[authz.Capability]bool{
		authz.CapabilityNotifications: true,
		authz.CapabilityLocation:      true,
	}})
}

// countingCenter records every call so tests can assert the delivery
// service was never contacted.
type countingCenter struct {
	notify.Center
	calls int
}

func (c *countingCenter) PendingIdentifiers(ctx context.Context) (map[string]struct{}, error) {
	c.calls++
	return c.Center.PendingIdentifiers(ctx)
}

func (c *countingCenter) Add(ctx context.Context, req notify.Request) error {
	c.calls++
	return c.Center.Add(ctx, req)
}

func (c *countingCenter) Remove(ctx context.Context, ids ...string) {
	c.calls++
	c.Center.Remove(ctx, ids...)
}

// failingCenter rejects registration to exercise the saga compensation.
type failingCenter struct {
	notify.Center
}

func (f *failingCenter) Add(context.Context, notify.Request) error {
	return errors.New("delivery service unavailable")
}

func scheduledAlarm(name string) *models.Alarm {
	alarm := models.NewAlarm()
	alarm.Location = models.LocationInfo{Name: name, Latitude: 52.52, Longitude: 13.405, Radius: 500}
	return alarm
}

func TestScheduleMissingLocation(t *testing.T) {
	db := testDB(t)
	center := &countingCenter{Center: notify.NewCenter(nil)}
	m := NewManager(db, center, grantedGate(), nil)

	alarm := models.NewAlarm() // no destination configured
	err := m.Schedule(context.Background(), alarm)
	assert.True(t, errors.HasCode(err, errors.CodeMissingLocationInfo))
	assert.Zero(t, center.calls, "delivery service must not be contacted")
	assert.False(t, alarm.IsSaved)
}

func TestSchedulePermissionDenied(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	gate := authz.NewGate(authz.AutoPrompter{}) // denies everything
	m := NewManager(db, center, gate, nil)

	err := m.Schedule(context.Background(), scheduledAlarm("Home"))
	assert.True(t, errors.HasCode(err, errors.CodePermissionDenied))

	pending, _ := center.PendingIdentifiers(context.Background())
	assert.Empty(t, pending)
}

func TestScheduleRoundTrip(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	m := NewManager(db, center, grantedGate(), nil)

	alarm := scheduledAlarm("Home")
	require.NoError(t, m.Schedule(context.Background(), alarm))
	assert.True(t, alarm.IsSaved)

	browse, err := m.FetchAlarms(context.Background())
	require.NoError(t, err)
	require.Equal(t, BucketActive, browse.Sections[0].Bucket)
	require.Len(t, browse.Sections[0].Alarms, 1)
	assert.Equal(t, alarm.ID, browse.Sections[0].Alarms[0].ID)
	assert.True(t, browse.Sections[0].Alarms[0].IsActive)
}

func TestScheduleDuplicateReplaces(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	m := NewManager(db, center, grantedGate(), nil)

	alarm := scheduledAlarm("Home")
	require.NoError(t, m.Schedule(context.Background(), alarm))

	alarm.Note = "updated"
	require.NoError(t, m.Schedule(context.Background(), alarm))

	reqs, err := center.PendingRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 1, "old request replaced, not duplicated")
	assert.Contains(t, reqs[0].Payload.Body, "updated")
}

func TestScheduleCompensatesFailedRegistration(t *testing.T) {
	db := testDB(t)
	m := NewManager(db, &failingCenter{Center: notify.NewCenter(nil)}, grantedGate(), nil)

	alarm := scheduledAlarm("Home")
	err := m.Schedule(context.Background(), alarm)
	require.Error(t, err)

	// the fresh insert was rolled back
	all, err := models.GetAllAlarms(db)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestScheduleCompensationRestoresPrevious(t *testing.T) {
	db := testDB(t)
	good := notify.NewCenter(nil)
	m := NewManager(db, good, grantedGate(), nil)

	alarm := scheduledAlarm("Home")
	alarm.Note = "first"
	require.NoError(t, m.Schedule(context.Background(), alarm))

	failing := NewManager(db, &failingCenter{Center: good}, grantedGate(), nil)
	alarm.Note = "second"
	require.Error(t, failing.Schedule(context.Background(), alarm))

	loaded, err := models.GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.Note, "previous persisted state restored")
}

func TestCancelKeepsRecord(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	m := NewManager(db, center, grantedGate(), nil)

	alarm := scheduledAlarm("Home")
	require.NoError(t, m.Schedule(context.Background(), alarm))

	m.Cancel(context.Background(), alarm)

	pending, _ := center.PendingIdentifiers(context.Background())
	assert.Empty(t, pending)

	browse, err := m.FetchAlarms(context.Background())
	require.NoError(t, err)
	past := browse.Sections[len(browse.Sections)-1]
	require.Equal(t, BucketPast, past.Bucket)
	assert.Len(t, past.Alarms, 1, "cancelled alarm stays persisted in past state")

	// cancelling again is harmless
	m.Cancel(context.Background(), alarm)
}

func TestDeleteVariants(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	m := NewManager(db, center, grantedGate(), nil)

	a := scheduledAlarm("A")
	b := scheduledAlarm("B")
	require.NoError(t, m.Schedule(context.Background(), a))
	require.NoError(t, m.Schedule(context.Background(), b))

	// plain delete leaves the registration behind
	require.NoError(t, m.Delete(context.Background(), a))
	pending, _ := center.PendingIdentifiers(context.Background())
	assert.Contains(t, pending, a.ID.String())

	// combined delete removes both
	require.NoError(t, m.DeleteAndCancel(context.Background(), b))
	pending, _ = center.PendingIdentifiers(context.Background())
	assert.NotContains(t, pending, b.ID.String())
}

func TestPruneOrphans(t *testing.T) {
	db := testDB(t)
	center := notify.NewCenter(nil)
	m := NewManager(db, center, grantedGate(), nil)

	kept := scheduledAlarm("kept")
	require.NoError(t, m.Schedule(context.Background(), kept))

	// deleted without unregistering: the expected divergence
	orphan := scheduledAlarm("orphan")
	require.NoError(t, m.Schedule(context.Background(), orphan))
	require.NoError(t, m.Delete(context.Background(), orphan))

	// too young to prune
	require.NoError(t, m.PruneOrphans(context.Background(), time.Hour))
	pending, _ := center.PendingIdentifiers(context.Background())
	assert.Len(t, pending, 2)

	// old enough
	require.NoError(t, m.PruneOrphans(context.Background(), -time.Minute))
	pending, _ = center.PendingIdentifiers(context.Background())
	assert.Len(t, pending, 1)
	assert.Contains(t, pending, kept.ID.String())
}

func TestFormatDistance(t *testing.T) {
	assert.Equal(t, "500 m", FormatDistance(500))
	assert.Equal(t, "999 m", FormatDistance(999))
	assert.Equal(t, "1 km", FormatDistance(1000))
	assert.Equal(t, "1.2 km", FormatDistance(1200))
	assert.Equal(t, "2.5 km", FormatDistance(2500))
}
