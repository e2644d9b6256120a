package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"glarm/pkg/errors"
	"glarm/pkg/util"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := util.InitDatabase("", "", false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}, &Alarm{}))
	return db
}

func TestAlarmLifecycle(t *testing.T) {
	db := testDB(t)

	alarm := NewAlarm()
	assert.False(t, alarm.IsSaved)
	assert.Equal(t, DefaultSoundName, alarm.SoundName)
	assert.True(t, alarm.Location.IsZero())

	alarm.Location = LocationInfo{Name: "Home", Latitude: 52.52, Longitude: 13.405, Radius: 500}
	alarm.Note = "pick up keys"

	require.NoError(t, SaveAlarm(db, alarm))
	assert.True(t, alarm.IsSaved)

	loaded, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsSaved)
	assert.Equal(t, "Home", loaded.Location.Name)
	assert.Equal(t, "pick up keys", loaded.Note)
	assert.False(t, loaded.IsActive, "active state is derived, never persisted")

	// save in place, same identifier
	loaded.Note = "changed"
	require.NoError(t, SaveAlarm(db, loaded))
	again, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", again.Note)

	all, err := GetAllAlarms(db)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, DeleteAlarm(db, loaded))
	_, err = GetAlarm(db, alarm.ID)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRevertAlarm(t *testing.T) {
	db := testDB(t)

	alarm := NewAlarm()
	alarm.Location = LocationInfo{Name: "Office", Latitude: 1, Longitude: 2, Radius: 300}
	alarm.Note = "original"
	require.NoError(t, SaveAlarm(db, alarm))

	alarm.Note = "edited but discarded"
	alarm.IsMarked = true
	require.NoError(t, RevertAlarm(db, alarm))
	assert.Equal(t, "original", alarm.Note)
	assert.False(t, alarm.IsMarked)

	// reverting a never-saved draft is a no-op
	draft := NewAlarm()
	draft.Note = "draft"
	require.NoError(t, RevertAlarm(db, draft))
	assert.Equal(t, "draft", draft.Note)
}

func TestDateCreatedImmutable(t *testing.T) {
	db := testDB(t)

	alarm := NewAlarm()
	alarm.Location = LocationInfo{Name: "Gym", Radius: 200}
	require.NoError(t, SaveAlarm(db, alarm))

	created := alarm.DateCreated
	alarm.DateCreated = created.AddDate(1, 0, 0)
	require.NoError(t, SaveAlarm(db, alarm))

	loaded, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, created, loaded.DateCreated, time.Second)
}
