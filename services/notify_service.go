package services

import (
	"wellness/models"

	"gorm.io/gorm"
)

type notifyDeps struct {
	db *gorm.DB
}

var _notify notifyDeps

func InitNotifyDeps(db *gorm.DB) {
	_notify = notifyDeps{db: db}
}

// RecordNotification persists a rendered-notification history row. Safe to
// call anywhere; a missing db means history is simply not kept.
func RecordNotification(n models.Notification) {
	if _notify.db == nil {
		return
	}
	_ = _notify.db.Create(&n).Error
}

func RecentNotifications(accountID uint, limit int) ([]models.Notification, error) {
	if _notify.db == nil {
		return nil, nil
	}
	var rows []models.Notification
	err := _notify.db.
		Where("account_id = ?", accountID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
