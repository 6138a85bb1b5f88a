package models

import (
	"time"

	"gorm.io/datatypes"
)

// PushSubscriptionRecord is the remote directory row for one device
// subscription. At most one live row exists per (account_id, endpoint);
// multiple endpoints per account are legal (multi-device).
type PushSubscriptionRecord struct {
	ID               uint           `gorm:"primaryKey"`
	AccountID        uint           `gorm:"not null;uniqueIndex:uidx_account_endpoint"`
	Endpoint         string         `gorm:"size:512;not null;uniqueIndex:uidx_account_endpoint"`
	P256dh           string         `gorm:"size:256"`
	Auth             string         `gorm:"size:128"`
	ExpirationTime   *int64         // epoch millis, nil when the platform sets none
	SubscriptionData datatypes.JSON // full subscription as handed out by the platform
	UpdatedAt        time.Time
	CreatedAt        time.Time
}
