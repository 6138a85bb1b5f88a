package models

type ReminderSettings struct {
	WaterEnabled       bool     `json:"waterEnabled"`
	WaterIntervalHours float64  `json:"waterInterval"` // hours between water reminders
	MealEnabled        bool     `json:"mealEnabled"`
	MealTimes          []string `json:"mealTimes"` // ordered HH:MM strings
}

// DefaultReminderSettings mirrors what the onboarding flow writes.
func DefaultReminderSettings() ReminderSettings {
	return ReminderSettings{
		WaterEnabled:       false,
		WaterIntervalHours: 2,
		MealEnabled:        false,
		MealTimes:          []string{"08:00", "13:00", "19:00"},
	}
}

// ReminderMarkers is the only state a reminder rule needs to decide whether
// to fire again. WaterLastFired is epoch seconds; MealShown maps each HH:MM
// meal time to the YYYY-MM-DD date its reminder last fired.
type ReminderMarkers struct {
	WaterLastFired int64             `json:"waterLastFired"`
	MealShown      map[string]string `json:"mealShown"`
}
