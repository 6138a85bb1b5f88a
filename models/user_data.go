package models

import "time"

// Mood values accepted on a daily record.
const (
	MoodGreat = "great"
	MoodGood  = "good"
	MoodOkay  = "okay"
	MoodBad   = "bad"
)

type UserProfile struct {
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	Goal         string   `json:"goal"` // "lose" | "maintain" | "gain"
	Restrictions []string `json:"restrictions"`
	Weight       float64  `json:"weight"` // kg
	Height       float64  `json:"height"` // cm
	CustomMeals  []string `json:"customMeals,omitempty"`
}

// Goals holds the per-day targets shown against logged intake.
type Goals struct {
	Calories        float64 `json:"calories"` // e.g. 2200 kcal
	Protein         float64 `json:"protein"`  // e.g. 120 g
	Carbs           float64 `json:"carbs"`    // e.g. 275 g
	Fat             float64 `json:"fat"`      // e.g. 70 g
	Water           float64 `json:"water"`    // e.g. 8 glasses
	ExerciseMinutes float64 `json:"exerciseMinutes"`
	SleepHours      float64 `json:"sleepHours"`
}

type MealEntry struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Time     string  `json:"time,omitempty"` // HH:MM
}

// DailyData is one calendar day of logged activity, keyed by YYYY-MM-DD.
type DailyData struct {
	Date       string      `json:"date"`
	Meals      []MealEntry `json:"meals"`
	Water      float64     `json:"water"`
	Exercised  bool        `json:"exercised"`
	SleepHours float64     `json:"sleepHours"`
	Mood       string      `json:"mood,omitempty"`
	Weight     *float64    `json:"weight,omitempty"`
}

// UserData is the aggregate root. It is owned by the local store; other
// components read it but never write it directly.
type UserData struct {
	Profile       UserProfile          `json:"profile"`
	Goals         Goals                `json:"goals"`
	DailyRecords  map[string]DailyData `json:"dailyRecords"`
	Streak        int                  `json:"streak"`
	LastAccess    time.Time            `json:"lastAccess"`
	Premium       bool                 `json:"premium"`
	PremiumExpiry *time.Time           `json:"premiumExpiry,omitempty"`
}

// BackupMirror is the secondary copy written alongside every aggregate save.
type BackupMirror struct {
	Data          UserData  `json:"data"`
	SavedAt       time.Time `json:"savedAt"`
	SchemaVersion int       `json:"schemaVersion"`
}

// ExportEnvelope wraps the aggregate for export/import.
type ExportEnvelope struct {
	ExportDate time.Time `json:"exportDate"`
	Version    int       `json:"version"`
	UserData
}
