package services

import (
	"context"
	"encoding/json"
	"time"

	"wellness/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionDirectory is the remote directory push subscriptions are
// synchronized into, keyed by (accountID, endpoint).
type SubscriptionDirectory interface {
	Upsert(ctx context.Context, accountID uint, sub *Subscription) error
	Remove(ctx context.Context, accountID uint, endpoint string) error
}

type GormSubscriptionDirectory struct {
	db *gorm.DB
}

func NewGormSubscriptionDirectory(db *gorm.DB) *GormSubscriptionDirectory {
	return &GormSubscriptionDirectory{db: db}
}

// Upsert keeps at most one live record per (account_id, endpoint); a
// conflicting insert updates the existing row in place.
func (d *GormSubscriptionDirectory) Upsert(ctx context.Context, accountID uint, sub *Subscription) error {
	raw, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	rec := models.PushSubscriptionRecord{
		AccountID:        accountID,
		Endpoint:         sub.Endpoint,
		P256dh:           sub.P256dh,
		Auth:             sub.Auth,
		ExpirationTime:   sub.ExpirationTime,
		SubscriptionData: raw,
		UpdatedAt:        time.Now(),
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}, {Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"p256dh", "auth", "expiration_time", "subscription_data", "updated_at",
		}),
	}).Create(&rec).Error
}

func (d *GormSubscriptionDirectory) Remove(ctx context.Context, accountID uint, endpoint string) error {
	return d.db.WithContext(ctx).
		Where("account_id = ? AND endpoint = ?", accountID, endpoint).
		Delete(&models.PushSubscriptionRecord{}).Error
}
