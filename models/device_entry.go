package models

import (
	"time"

	"gorm.io/datatypes"
)

// Stable storage keys. Each key holds a single JSON blob per account.
const (
	KeyUserData           = "user_data"
	KeyUserDataBackup     = "user_data_backup"
	KeyChatLimits         = "chat_limits"
	KeyReminderSettings   = "reminder_settings"
	KeyMealRemindersShown = "meal_reminders_shown"
	KeyWaterReminderLast  = "water_reminder_last"
	KeyAccountCreatedAt   = "account_created_at"
	KeyPremiumFlag        = "premium_flag"
)

// DeviceEntry is one persisted key/blob pair of the device-local store.
type DeviceEntry struct {
	ID        uint           `gorm:"primaryKey"`
	AccountID uint           `gorm:"not null;uniqueIndex:uidx_account_key"`
	Key       string         `gorm:"size:64;not null;uniqueIndex:uidx_account_key"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
	CreatedAt time.Time
}
