package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glarm/pkg/errors"
)

func TestCreateCategoryUniqueness(t *testing.T) {
	db := testDB(t)

	_, err := CreateCategory(db, "Errands", "checklist", true)
	require.NoError(t, err)

	_, err = CreateCategory(db, "Errands", "other", true)
	assert.True(t, errors.HasCode(err, errors.CodeDuplicateCategory))

	// uniqueness is case-sensitive
	_, err = CreateCategory(db, "errands", "checklist", true)
	require.NoError(t, err)

	_, err = CreateCategory(db, "", "x", true)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidArgument))
}

func TestAssignCategoryClearsMarked(t *testing.T) {
	db := testDB(t)
	_, err := CreateCategory(db, "Work", "briefcase", true)
	require.NoError(t, err)

	alarm := NewAlarm()
	alarm.Location = LocationInfo{Name: "Office", Radius: 250}
	alarm.IsMarked = true
	require.NoError(t, SaveAlarm(db, alarm))

	work := "Work"
	require.NoError(t, AssignCategory(db, alarm, &work))
	assert.False(t, alarm.IsMarked, "categorization clears the marked flag")

	loaded, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.CategoryName)
	assert.Equal(t, "Work", *loaded.CategoryName)
	assert.False(t, loaded.IsMarked)

	// detaching keeps the marked flag as-is
	loaded.IsMarked = false
	require.NoError(t, AssignCategory(db, loaded, nil))
	reloaded, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CategoryName)
}

func TestAssignCategoryMovesBetweenSets(t *testing.T) {
	db := testDB(t)
	_, err := CreateCategory(db, "Work", "briefcase", true)
	require.NoError(t, err)
	_, err = CreateCategory(db, "Errands", "checklist", true)
	require.NoError(t, err)

	alarm := NewAlarm()
	alarm.Location = LocationInfo{Name: "Store", Radius: 100}
	require.NoError(t, SaveAlarm(db, alarm))

	work := "Work"
	require.NoError(t, AssignCategory(db, alarm, &work))
	errands := "Errands"
	require.NoError(t, AssignCategory(db, alarm, &errands))

	workCat, err := GetCategory(db, "Work")
	require.NoError(t, err)
	assert.Empty(t, workCat.Alarms, "alarm left the old category's set")

	errandsCat, err := GetCategory(db, "Errands")
	require.NoError(t, err)
	require.Len(t, errandsCat.Alarms, 1)
	assert.Equal(t, alarm.ID, errandsCat.Alarms[0].ID)
}

func TestAssignUnknownCategory(t *testing.T) {
	db := testDB(t)
	alarm := NewAlarm()
	require.NoError(t, SaveAlarm(db, alarm))

	missing := "Nope"
	err := AssignCategory(db, alarm, &missing)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRemoveCategoryOrphansAlarms(t *testing.T) {
	db := testDB(t)
	_, err := CreateCategory(db, "Trips", "airplane", true)
	require.NoError(t, err)

	alarm := NewAlarm()
	alarm.Location = LocationInfo{Name: "Airport", Radius: 800}
	require.NoError(t, SaveAlarm(db, alarm))
	trips := "Trips"
	require.NoError(t, AssignCategory(db, alarm, &trips))

	require.NoError(t, RemoveCategory(db, "Trips"))

	loaded, err := GetAlarm(db, alarm.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.CategoryName)

	_, err = GetCategory(db, "Trips")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestRemoveDefaultCategoryRefused(t *testing.T) {
	db := testDB(t)
	require.NoError(t, SeedDefaultCategories(db))

	err := RemoveCategory(db, "Home")
	assert.True(t, errors.HasCode(err, errors.CodeProtectedCategory))

	// seeding twice is idempotent
	require.NoError(t, SeedDefaultCategories(db))
	categories, err := GetAllCategories(db)
	require.NoError(t, err)
	assert.Len(t, categories, 4)
}
