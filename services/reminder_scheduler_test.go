package services

import (
	"context"
	"testing"
	"time"

	"wellness/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func mustClock(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

// enabledSettings is the default shape with both rules switched on.
func enabledSettings() models.ReminderSettings {
	s := models.DefaultReminderSettings()
	s.WaterEnabled = true
	s.MealEnabled = true
	return s
}

func TestWaterReminderFiresOnFirstEvaluation(t *testing.T) {
	now := mustClock(t, "2024-11-27T10:00:00Z")
	markers := models.ReminderMarkers{MealShown: map[string]string{}}

	due, updated := EvaluateReminders(enabledSettings(), markers, now)

	require.Len(t, due, 1)
	assert.Equal(t, "water", due[0].Rule)
	assert.Equal(t, "/water", due[0].Options.TargetURL())
	assert.Equal(t, now.Unix(), updated.WaterLastFired)
}

func TestWaterReminderRespectsInterval(t *testing.T) {
	now := mustClock(t, "2024-11-27T10:00:00Z")
	settings := enabledSettings()
	settings.MealEnabled = false
	settings.WaterIntervalHours = 2

	markers := models.ReminderMarkers{
		WaterLastFired: now.Add(-time.Hour).Unix(),
		MealShown:      map[string]string{},
	}
	due, _ := EvaluateReminders(settings, markers, now)
	assert.Empty(t, due)

	markers.WaterLastFired = now.Add(-2 * time.Hour).Unix()
	due, _ = EvaluateReminders(settings, markers, now)
	require.Len(t, due, 1)
	assert.Equal(t, "water", due[0].Rule)
}

func TestDisabledRulesNeverFire(t *testing.T) {
	// both rules default to off until onboarding enables them
	due, _ := EvaluateReminders(models.DefaultReminderSettings(), models.ReminderMarkers{MealShown: map[string]string{}}, mustClock(t, "2024-11-27T12:30:00Z"))
	assert.Empty(t, due)
}

func TestMealReminderFiresThirtyMinutesAhead(t *testing.T) {
	// 13:00 meal, evaluated at 12:30
	now := mustClock(t, "2024-11-27T12:30:00Z")
	settings := enabledSettings()
	settings.WaterEnabled = false

	markers := models.ReminderMarkers{WaterLastFired: now.Unix(), MealShown: map[string]string{}}
	due, updated := EvaluateReminders(settings, markers, now)

	require.Len(t, due, 1)
	assert.Equal(t, "meal", due[0].Rule)
	assert.Contains(t, due[0].Options.Body, "13:00")
	assert.Equal(t, "2024-11-27", updated.MealShown["13:00"])
}

func TestMealReminderDedupsPerDateAndMealTime(t *testing.T) {
	now := mustClock(t, "2024-11-27T12:30:00Z")
	settings := enabledSettings()
	settings.WaterEnabled = false

	markers := models.ReminderMarkers{MealShown: map[string]string{}}
	due, updated := EvaluateReminders(settings, markers, now)
	require.Len(t, due, 1)

	// same minute, marker already set
	due, _ = EvaluateReminders(settings, updated, now)
	assert.Empty(t, due)

	// next day the same slot fires again
	due, _ = EvaluateReminders(settings, updated, now.AddDate(0, 0, 1))
	require.Len(t, due, 1)

	// a different meal time dedups independently
	markers = models.ReminderMarkers{MealShown: map[string]string{"13:00": "2024-11-27"}}
	due, _ = EvaluateReminders(settings, markers, mustClock(t, "2024-11-27T18:30:00Z"))
	require.Len(t, due, 1)
	assert.Contains(t, due[0].Options.Body, "19:00")
}

func TestMealReminderWrapsAcrossMidnight(t *testing.T) {
	settings := models.ReminderSettings{MealEnabled: true, MealTimes: []string{"00:15"}}

	due, _ := EvaluateReminders(settings, models.ReminderMarkers{MealShown: map[string]string{}}, mustClock(t, "2024-11-27T23:45:00Z"))
	require.Len(t, due, 1)
	assert.Equal(t, "meal", due[0].Rule)
}

func TestMalformedMealTimeIsSkipped(t *testing.T) {
	settings := models.ReminderSettings{MealEnabled: true, MealTimes: []string{"25:99", "13:00"}}

	due, _ := EvaluateReminders(settings, models.ReminderMarkers{MealShown: map[string]string{}}, mustClock(t, "2024-11-27T12:30:00Z"))
	require.Len(t, due, 1)
	assert.Contains(t, due[0].Options.Body, "13:00")
}

func TestEvaluateDoesNotMutateInputMarkers(t *testing.T) {
	now := mustClock(t, "2024-11-27T12:30:00Z")
	markers := models.ReminderMarkers{MealShown: map[string]string{}}

	_, updated := EvaluateReminders(enabledSettings(), markers, now)

	assert.Zero(t, markers.WaterLastFired)
	assert.Empty(t, markers.MealShown)
	assert.NotZero(t, updated.WaterLastFired)
	assert.Equal(t, "2024-11-27", updated.MealShown["13:00"])
}

func newTestScheduler(t *testing.T, now string, accounts ...uint) (*ReminderScheduler, map[uint]*LocalStore, *fakeNotifier) {
	t.Helper()
	fixed := mustClock(t, now)

	stores := make(map[uint]*LocalStore, len(accounts))
	for _, id := range accounts {
		s := NewLocalStore(newMemDeviceStore(), zap.NewNop())
		s.now = func() time.Time { return fixed }
		s.SaveReminderSettings(enabledSettings())
		stores[id] = s
	}

	notifier := &fakeNotifier{}
	sched := NewReminderScheduler(
		func(ctx context.Context) ([]uint, error) { return accounts, nil },
		func(id uint) *LocalStore { return stores[id] },
		notifier,
		zap.NewNop(),
	)
	sched.now = func() time.Time { return fixed }
	return sched, stores, notifier
}

func TestTickPersistsMarkers(t *testing.T) {
	sched, stores, notifier := newTestScheduler(t, "2024-11-27T10:00:00Z", 7)

	sched.Tick()

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, uint(7), notifier.calls[0].AccountID)
	assert.NotZero(t, stores[7].ReminderMarkers().WaterLastFired)
}

func TestTickTwiceInSameMinuteFiresOnce(t *testing.T) {
	sched, _, notifier := newTestScheduler(t, "2024-11-27T12:30:00Z", 7)

	sched.Tick()
	sched.Tick()

	// one water and one meal reminder, each exactly once
	assert.Equal(t, 2, notifier.count())
}

func TestTickCoversEveryAccount(t *testing.T) {
	sched, _, notifier := newTestScheduler(t, "2024-11-27T10:00:00Z", 7, 8, 9)

	sched.Tick()

	assert.Equal(t, 3, notifier.count())
	seen := map[uint]bool{}
	for _, c := range notifier.calls {
		seen[c.AccountID] = true
	}
	assert.Len(t, seen, 3)
}

func TestTickPicksUpSettingsChanges(t *testing.T) {
	sched, stores, notifier := newTestScheduler(t, "2024-11-27T10:00:00Z", 7)

	stores[7].SaveReminderSettings(models.DefaultReminderSettings())
	sched.Tick()
	assert.Zero(t, notifier.count())

	// settings are re-read on every tick
	settings := models.DefaultReminderSettings()
	settings.WaterEnabled = true
	stores[7].SaveReminderSettings(settings)

	sched.Tick()
	assert.Equal(t, 1, notifier.count())
}
