package utils

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Counter: reminders fired, labelled by rule ("water" | "meal")
	RemindersFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_reminders_fired_total",
			Help: "Reminder notifications fired",
		},
		[]string{"rule"},
	)

	// Counter: worker cache lookups
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_sw_cache_lookups_total",
			Help: "Service worker cache lookups",
		},
		[]string{"result"}, // "hit" | "miss"
	)

	// Counter: chat quota denials, labelled by reason
	QuotaDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "app_chat_quota_denials_total",
			Help: "Chat messages blocked by the quota guard",
		},
		[]string{"reason"},
	)

	// Counter: notifications rendered by the worker
	NotificationsShown = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "app_notifications_shown_total",
			Help: "Notifications rendered by the background worker",
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(RemindersFired, CacheLookups, QuotaDenials, NotificationsShown)
}
