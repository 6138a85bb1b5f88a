package utils

import "time"

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
	ClockLayout = "15:04"
)

// DateKey renders t as the YYYY-MM-DD key daily records are stored under.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

// ClockKey renders the wall-clock HH:MM of t, the shape meal times use.
func ClockKey(t time.Time) string {
	return t.Format(ClockLayout)
}

func CalculateAge(birthday time.Time) int {
	now := time.Now()
	age := now.Year() - birthday.Year()
	if now.YearDay() < birthday.YearDay() {
		age--
	}
	return age
}
