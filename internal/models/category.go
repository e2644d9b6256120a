package models

import (
	"time"

	"gorm.io/gorm"

	"glarm/pkg/errors"
)

// Category groups alarms in the browse list. Name is the natural key,
// case-sensitive.
type Category struct {
	Name            string    `json:"name" gorm:"primaryKey;size:100"`
	ImageName       string    `json:"imageName" gorm:"size:255"`
	IsCreatedByUser bool      `json:"isCreatedByUser"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime"`
	Alarms          []Alarm   `json:"alarms,omitempty" gorm:"foreignKey:CategoryName;references:Name"`
}

// CreateCategory fails on a name collision.
func CreateCategory(db *gorm.DB, name, imageName string, createdByUser bool) (*Category, error) {
	if name == "" {
		return nil, errors.WithCode(errors.CodeInvalidArgument, "category name is empty")
	}
	var count int64
	if err := db.Model(&Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "check category")
	}
	if count > 0 {
		return nil, errors.WithCodef(errors.CodeDuplicateCategory, "category %q already exists", name)
	}

	category := &Category{
		Name:            name,
		ImageName:       imageName,
		IsCreatedByUser: createdByUser,
	}
	if err := db.Create(category).Error; err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return category, nil
}

// GetCategory loads one category with its alarms.
func GetCategory(db *gorm.DB, name string) (*Category, error) {
	var category Category
	if err := db.Preload("Alarms").First(&category, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeNotFound, "category %q not found", name)
		}
		return nil, errors.Wrap(err, "get category")
	}
	return &category, nil
}

// GetAllCategories lists categories sorted by name.
func GetAllCategories(db *gorm.DB) ([]*Category, error) {
	var categories []*Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	return categories, nil
}

// RemoveCategory refuses default/template categories. Assigned alarms are
// orphaned: their category reference becomes nil and they fall back into the
// past bucket unless still marked or active.
func RemoveCategory(db *gorm.DB, name string) error {
	category, err := GetCategory(db, name)
	if err != nil {
		return err
	}
	if !category.IsCreatedByUser {
		return errors.WithCodef(errors.CodeProtectedCategory, "category %q is a default category", name)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Alarm{}).Where("category_name = ?", name).
			Update("category_name", nil).Error; err != nil {
			return errors.Wrap(err, "orphan alarms")
		}
		if err := tx.Delete(&Category{}, "name = ?", name).Error; err != nil {
			return errors.Wrap(err, "delete category")
		}
		return nil
	})
}

// AssignCategory moves the alarm between category sets. A non-nil category
// clears the marked flag. Nil detaches the alarm from its category.
func AssignCategory(db *gorm.DB, alarm *Alarm, categoryName *string) error {
	if alarm == nil {
		return errors.WithCode(errors.CodeInvalidArgument, "alarm is nil")
	}
	var category *Category
	if categoryName != nil {
		var err error
		category, err = GetCategory(db, *categoryName)
		if err != nil {
			return err
		}
	}

	alarm.CategoryName = categoryName
	alarm.Category = category
	if categoryName != nil {
		alarm.IsMarked = false
	}
	if !alarm.IsSaved {
		return nil
	}
	if err := db.Model(&Alarm{}).Where("id = ?", alarm.ID).
		Updates(map[string]interface{}{
			"category_name": categoryName,
			"is_marked":     alarm.IsMarked,
		}).Error; err != nil {
		return errors.Wrap(err, "assign category")
	}
	return nil
}

// defaultCategories matches the built-in template set.
var defaultCategories = []Category{
	{Name: "Home", ImageName: "house"},
	{Name: "Work", ImageName: "briefcase"},
	{Name: "Travel", ImageName: "airplane"},
	{Name: "Shopping", ImageName: "cart"},
}

// SeedDefaultCategories inserts the template categories if missing.
func SeedDefaultCategories(db *gorm.DB) error {
	for _, c := range defaultCategories {
		var count int64
		if err := db.Model(&Category{}).Where("name = ?", c.Name).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check default category")
		}
		if count == 0 {
			if err := db.Create(&c).Error; err != nil {
				return errors.Wrap(err, "seed default category")
			}
		}
	}
	return nil
}
