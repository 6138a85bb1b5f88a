package services

import (
	"context"
	"fmt"
	"time"

	"wellness/models"
	"wellness/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// mealReminderLead is how far ahead of a meal time its reminder fires.
const mealReminderLead = 30 * time.Minute

// Notifier renders reminder notifications; the background worker satisfies
// it.
type Notifier interface {
	NotifyAccount(ctx context.Context, accountID uint, opts models.NotificationOptions) error
}

// AccountLister returns the accounts with engine state on this device.
type AccountLister func(ctx context.Context) ([]uint, error)

// StoreFactory builds the local store view of one account.
type StoreFactory func(accountID uint) *LocalStore

// GormAccountLister lists accounts that have device entries.
func GormAccountLister(db *gorm.DB) AccountLister {
	return func(ctx context.Context) ([]uint, error) {
		var ids []uint
		err := db.WithContext(ctx).
			Model(&models.DeviceEntry{}).
			Distinct("account_id").
			Pluck("account_id", &ids).Error
		return ids, err
	}
}

type Reminder struct {
	Rule    string // "water" | "meal"
	Options models.NotificationOptions
}

// EvaluateReminders is the pure tick: given settings, fire markers and the
// current time it returns the reminders due now and the updated markers.
// No clock, storage or timer access happens here.
func EvaluateReminders(settings models.ReminderSettings, markers models.ReminderMarkers, now time.Time) ([]Reminder, models.ReminderMarkers) {
	updated := models.ReminderMarkers{
		WaterLastFired: markers.WaterLastFired,
		MealShown:      make(map[string]string, len(markers.MealShown)),
	}
	for k, v := range markers.MealShown {
		updated.MealShown[k] = v
	}

	var due []Reminder

	if settings.WaterEnabled {
		interval := int64(settings.WaterIntervalHours * 3600)
		if markers.WaterLastFired == 0 || now.Unix()-markers.WaterLastFired >= interval {
			due = append(due, Reminder{
				Rule: "water",
				Options: models.NotificationOptions{
					Title: "Time to drink water",
					Body:  "A glass of water keeps you on track. 💧",
					Icon:  "/icons/icon-192.png",
					Badge: "/icons/badge-72.png",
					Tag:   "water-reminder",
					Data:  map[string]any{"url": "/water"},
				},
			})
			updated.WaterLastFired = now.Unix()
		}
	}

	if settings.MealEnabled {
		today := utils.DateKey(now)
		nowClock := utils.ClockKey(now)
		for _, mealTime := range settings.MealTimes {
			instant, err := reminderInstant(mealTime)
			if err != nil {
				continue
			}
			// Each meal time dedups independently: one fire per
			// calendar date per meal time.
			if nowClock == instant && updated.MealShown[mealTime] != today {
				due = append(due, Reminder{
					Rule: "meal",
					Options: models.NotificationOptions{
						Title: "Meal coming up",
						Body:  fmt.Sprintf("Your %s meal is in 30 minutes. Time to plan it!", mealTime),
						Icon:  "/icons/icon-192.png",
						Badge: "/icons/badge-72.png",
						Tag:   "meal-reminder-" + mealTime,
						Data:  map[string]any{"url": "/meals"},
					},
				})
				updated.MealShown[mealTime] = today
			}
		}
	}

	return due, updated
}

// reminderInstant returns the HH:MM thirty minutes before mealTime,
// wrapping across midnight.
func reminderInstant(mealTime string) (string, error) {
	t, err := time.Parse(utils.ClockLayout, mealTime)
	if err != nil {
		return "", err
	}
	return t.Add(-mealReminderLead).Format(utils.ClockLayout), nil
}

// ReminderScheduler is the cooperative polling loop: rules are evaluated
// immediately on Start and then every minute. Settings and markers are
// re-read from the store on every tick, so a change takes effect within one
// tick. Nothing survives process termination beyond the persisted markers.
type ReminderScheduler struct {
	accounts AccountLister
	stores   StoreFactory
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	cron     *cron.Cron
}

func NewReminderScheduler(accounts AccountLister, stores StoreFactory, notifier Notifier, log *zap.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		accounts: accounts,
		stores:   stores,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *ReminderScheduler) Start() {
	s.Tick()

	s.cron = cron.New()
	_, _ = s.cron.AddFunc("@every 1m", s.Tick)
	s.cron.Start()
}

// Stop tears the polling timer down deterministically. In-flight ticks run
// to completion.
func (s *ReminderScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Tick evaluates every account's rules once. Markers are persisted before
// rendering so a restart right after a fire cannot double-fire within the
// same window.
func (s *ReminderScheduler) Tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ids, err := s.accounts(ctx)
	if err != nil {
		s.log.Error("reminder_account_list_failed", zap.Error(err))
		return
	}

	now := s.now()
	for _, id := range ids {
		store := s.stores(id)
		settings := store.ReminderSettings()
		markers := store.ReminderMarkers()

		due, updated := EvaluateReminders(settings, markers, now)
		if len(due) == 0 {
			continue
		}

		store.SaveReminderMarkers(updated)
		for _, r := range due {
			utils.RemindersFired.WithLabelValues(r.Rule).Inc()
			if err := s.notifier.NotifyAccount(ctx, id, r.Options); err != nil {
				s.log.Warn("reminder_render_failed",
					zap.Uint("account_id", id),
					zap.String("rule", r.Rule),
					zap.Error(err),
				)
			}
		}
	}
}
