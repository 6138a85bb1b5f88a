package services

import (
	"errors"
	"time"

	"wellness/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceStore is the device-local key/blob storage the engine persists into.
// Keys are the stable identifiers from models (KeyUserData etc.), one JSON
// blob each.
type DeviceStore interface {
	Get(key string) ([]byte, error) // ErrKeyNotFound when absent
	Set(key string, value []byte) error
	Delete(key string) error
}

// GormDeviceStore keeps one account's blobs in the device_entries table.
type GormDeviceStore struct {
	db        *gorm.DB
	accountID uint
}

func NewGormDeviceStore(db *gorm.DB, accountID uint) *GormDeviceStore {
	return &GormDeviceStore{db: db, accountID: accountID}
}

func (s *GormDeviceStore) Get(key string) ([]byte, error) {
	var entry models.DeviceEntry
	err := s.db.Where("account_id = ? AND key = ?", s.accountID, key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *GormDeviceStore) Set(key string, value []byte) error {
	entry := models.DeviceEntry{
		AccountID: s.accountID,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormDeviceStore) Delete(key string) error {
	return s.db.Where("account_id = ? AND key = ?", s.accountID, key).
		Delete(&models.DeviceEntry{}).Error
}
