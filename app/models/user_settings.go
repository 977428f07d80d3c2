package models

import (
	"time"

	"gorm.io/gorm"
)

// UserSettings stores per-user preferences, including the self-selected plan.
// The plan here is a preference, not an entitlement: the tier resolver decides
// what the user actually gets.
type UserSettings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex" json:"user_id"`
	Plan      string         `gorm:"type:varchar(50);default:''" json:"plan"`
	Language  string         `gorm:"type:varchar(10);default:'en'" json:"language"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// GetOrCreateUserSettings returns existing settings or creates defaults.
// A freshly created row carries no plan preference.
func GetOrCreateUserSettings(db *gorm.DB, userID uint) (*UserSettings, error) {
	var us UserSettings
	if err := db.Where("user_id = ?", userID).First(&us).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			us = UserSettings{UserID: userID, Language: "en"}
			if err := db.Create(&us).Error; err != nil {
				return nil, err
			}
			return &us, nil
		}
		return nil, err
	}
	return &us, nil
}

// HasPlanPreference reports whether the user explicitly selected a plan.
func (us *UserSettings) HasPlanPreference() bool {
	return us != nil && us.Plan != ""
}
