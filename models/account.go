package models

import (
	"time"

	"gorm.io/gorm"
)

type Account struct {
	gorm.Model
	Email         string `gorm:"uniqueIndex;not null"`
	Password      string `gorm:"not null"`
	Premium       bool   `gorm:"default:false"`
	PremiumExpiry *time.Time
}

// PremiumActive reports whether the premium flag is still in effect at t.
// An account with no expiry stays premium until the flag is cleared.
func (a *Account) PremiumActive(t time.Time) bool {
	if !a.Premium {
		return false
	}
	if a.PremiumExpiry == nil {
		return true
	}
	return t.Before(*a.PremiumExpiry)
}
