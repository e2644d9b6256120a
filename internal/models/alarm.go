package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"glarm/pkg/errors"
)

// LocationInfo is the destination of a location alarm. The zero value means
// the user has not picked a destination yet.
type LocationInfo struct {
	Name      string  `json:"name" gorm:"size:255"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"` // meters
}

func (l LocationInfo) IsZero() bool {
	return l == LocationInfo{}
}

type Alarm struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	Location     LocationInfo `json:"locationInfo" gorm:"embedded;embeddedPrefix:location_"`
	Note         string       `json:"note" gorm:"size:1024"`
	SoundName    string       `json:"soundName" gorm:"size:255"`
	IsMarked     bool         `json:"isMarked"`
	IsRecurring  bool         `json:"isRecurring"`
	DateCreated  time.Time    `json:"dateCreated" gorm:"autoCreateTime;<-:create"`
	CategoryName *string      `json:"categoryName,omitempty" gorm:"size:100"`
	Category     *Category    `json:"category,omitempty" gorm:"foreignKey:CategoryName;references:Name"`

	// IsActive is derived by intersecting the persisted set with the pending
	// notification identifiers. Never stored.
	IsActive bool `json:"isActive" gorm:"-"`
	// IsSaved is true once the record has been durably persisted.
	IsSaved bool `json:"isSaved" gorm:"-"`
}

func (a *Alarm) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Alarm) AfterFind(tx *gorm.DB) error {
	a.IsSaved = true
	return nil
}

// NewAlarm builds an unsaved draft. It becomes durable on the first
// successful schedule.
func NewAlarm() *Alarm {
	return &Alarm{
		ID:          uuid.New(),
		SoundName:   DefaultSoundName,
		DateCreated: time.Now(),
	}
}

const DefaultSoundName = "bulletin"

// SaveAlarm inserts an unsaved record and updates a saved one in place.
func SaveAlarm(db *gorm.DB, alarm *Alarm) error {
	if alarm == nil {
		return errors.WithCode(errors.CodeInvalidArgument, "alarm is nil")
	}
	if !alarm.IsSaved {
		if err := db.Create(alarm).Error; err != nil {
			return errors.Wrap(err, "insert alarm")
		}
		alarm.IsSaved = true
		return nil
	}
	if err := db.Save(alarm).Error; err != nil {
		return errors.Wrap(err, "save alarm")
	}
	return nil
}

// GetAlarm loads one alarm with its category.
func GetAlarm(db *gorm.DB, id uuid.UUID) (*Alarm, error) {
	var alarm Alarm
	if err := db.Preload("Category").First(&alarm, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeNotFound, "alarm %s not found", id)
		}
		return nil, errors.Wrap(err, "get alarm")
	}
	return &alarm, nil
}

// GetAllAlarms loads every persisted alarm.
func GetAllAlarms(db *gorm.DB) ([]*Alarm, error) {
	var alarms []*Alarm
	if err := db.Preload("Category").Find(&alarms).Error; err != nil {
		return nil, errors.Wrap(err, "list alarms")
	}
	return alarms, nil
}

// DeleteAlarm removes the persisted record only. Pending notifications are a
// separate concern; callers wanting both use the manager's DeleteAndCancel.
func DeleteAlarm(db *gorm.DB, alarm *Alarm) error {
	if alarm == nil {
		return errors.WithCode(errors.CodeInvalidArgument, "alarm is nil")
	}
	if err := db.Delete(&Alarm{}, "id = ?", alarm.ID).Error; err != nil {
		return errors.Wrap(err, "delete alarm")
	}
	alarm.IsSaved = false
	return nil
}

// RevertAlarm discards in-memory mutations on a saved record by reloading it.
// Reverting a never-saved draft is a no-op; the caller just drops it.
func RevertAlarm(db *gorm.DB, alarm *Alarm) error {
	if alarm == nil || !alarm.IsSaved {
		return nil
	}
	fresh, err := GetAlarm(db, alarm.ID)
	if err != nil {
		return err
	}
	*alarm = *fresh
	return nil
}
