package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wellness/models"
	"wellness/utils"

	"go.uber.org/zap"
)

const schemaVersion = 1

// LocalStore owns the UserData aggregate and everything else persisted in
// the device store. Reads never fail loudly: a missing or corrupt blob is
// treated as absent. Writes follow the silent-fail policy — storage errors
// are logged and swallowed, callers observe nothing (documented risk).
type LocalStore struct {
	store DeviceStore
	log   *zap.Logger
	now   func() time.Time
}

func NewLocalStore(store DeviceStore, log *zap.Logger) *LocalStore {
	return &LocalStore{store: store, log: log, now: time.Now}
}

// getJSON loads key into dest. Returns false when the key is absent, the
// blob does not parse, or the store itself errors.
func (s *LocalStore) getJSON(key string, dest any) bool {
	raw, err := s.store.Get(key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	if err != nil {
		s.log.Error("storage_read_failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Error("storage_parse_failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *LocalStore) setJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.Error("storage_marshal_failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(key, raw); err != nil {
		// Swallowed: quota and I/O failures never surface to callers.
		s.log.Error("storage_write_failed", zap.String("key", key), zap.Error(err))
	}
}

// Get returns the aggregate, or ok=false when none is stored.
func (s *LocalStore) Get() (models.UserData, bool) {
	var data models.UserData
	ok := s.getJSON(models.KeyUserData, &data)
	return data, ok
}

// Save persists the aggregate and refreshes the backup mirror.
func (s *LocalStore) Save(data models.UserData) {
	s.setJSON(models.KeyUserData, data)
	s.setJSON(models.KeyUserDataBackup, models.BackupMirror{
		Data:          data,
		SavedAt:       s.now(),
		SchemaVersion: schemaVersion,
	})
}

// GetDailyRecord projects the record for date (today when empty). It never
// mutates: a date with no record yields an empty, well-formed record.
func (s *LocalStore) GetDailyRecord(date string) models.DailyData {
	if date == "" {
		date = utils.DateKey(s.now())
	}
	data, ok := s.Get()
	if ok {
		if rec, found := data.DailyRecords[date]; found {
			return rec
		}
	}
	return models.DailyData{Date: date, Meals: []models.MealEntry{}}
}

// SaveDailyRecord upserts the record under its date key, bumps lastAccess
// and recomputes the streak.
func (s *LocalStore) SaveDailyRecord(rec models.DailyData) {
	if rec.Date == "" {
		rec.Date = utils.DateKey(s.now())
	}
	data, _ := s.Get()
	if data.DailyRecords == nil {
		data.DailyRecords = make(map[string]models.DailyData)
	}
	data.DailyRecords[rec.Date] = rec
	data.LastAccess = s.now()
	data.Streak = streakFrom(data.DailyRecords, s.now())
	s.Save(data)
}

// streakFrom counts consecutive days, backward from today, that have a
// record with at least one meal. The walk stops at the first gap, so cost
// is O(streak length) rather than O(history size).
func streakFrom(records map[string]models.DailyData, today time.Time) int {
	streak := 0
	day := today
	for {
		rec, ok := records[utils.DateKey(day)]
		if !ok || len(rec.Meals) == 0 {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// Export wraps the aggregate with export metadata.
func (s *LocalStore) Export() ([]byte, error) {
	data, ok := s.Get()
	if !ok {
		return nil, fmt.Errorf("no data to export")
	}
	return json.Marshal(models.ExportEnvelope{
		ExportDate: s.now(),
		Version:    schemaVersion,
		UserData:   data,
	})
}

// Import accepts an exported blob after a minimal structural check: the
// profile and goals keys must be present. Anything deeper is accepted
// as-is — validation here is intentionally shallow.
func (s *LocalStore) Import(blob []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(blob, &probe); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	if _, ok := probe["profile"]; !ok {
		return errors.New("invalid backup file: missing profile")
	}
	if _, ok := probe["goals"]; !ok {
		return errors.New("invalid backup file: missing goals")
	}

	var data models.UserData
	if err := json.Unmarshal(blob, &data); err != nil {
		return fmt.Errorf("invalid backup file: %w", err)
	}
	s.Save(data)
	return nil
}

// ChatLimits returns the raw stored counters; zero-valued when absent.
// Lazy resetting is the quota guard's job, not the store's.
func (s *LocalStore) ChatLimits() models.ChatLimits {
	var limits models.ChatLimits
	s.getJSON(models.KeyChatLimits, &limits)
	return limits
}

func (s *LocalStore) SaveChatLimits(limits models.ChatLimits) {
	s.setJSON(models.KeyChatLimits, limits)
}

func (s *LocalStore) ReminderSettings() models.ReminderSettings {
	var settings models.ReminderSettings
	if !s.getJSON(models.KeyReminderSettings, &settings) {
		return models.DefaultReminderSettings()
	}
	return settings
}

func (s *LocalStore) SaveReminderSettings(settings models.ReminderSettings) {
	s.setJSON(models.KeyReminderSettings, settings)
}

// ReminderMarkers loads both fire markers (water timestamp, per-meal dates).
func (s *LocalStore) ReminderMarkers() models.ReminderMarkers {
	var markers models.ReminderMarkers
	s.getJSON(models.KeyWaterReminderLast, &markers.WaterLastFired)
	if !s.getJSON(models.KeyMealRemindersShown, &markers.MealShown) {
		markers.MealShown = make(map[string]string)
	}
	return markers
}

func (s *LocalStore) SaveReminderMarkers(markers models.ReminderMarkers) {
	s.setJSON(models.KeyWaterReminderLast, markers.WaterLastFired)
	s.setJSON(models.KeyMealRemindersShown, markers.MealShown)
}

// ResetLimits clears chat counters and fire markers. Testing hook.
func (s *LocalStore) ResetLimits() {
	_ = s.store.Delete(models.KeyChatLimits)
	_ = s.store.Delete(models.KeyWaterReminderLast)
	_ = s.store.Delete(models.KeyMealRemindersShown)
}

// Clear wipes the aggregate and backup. Explicit logout only; daily records
// are never implicitly deleted.
func (s *LocalStore) Clear() {
	_ = s.store.Delete(models.KeyUserData)
	_ = s.store.Delete(models.KeyUserDataBackup)
}
