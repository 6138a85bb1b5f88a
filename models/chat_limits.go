package models

// ChatLimits tracks usage of the rate-limited chat feature. Counters are
// reset lazily: whenever LastResetDate (resp. LastResetMonth) no longer
// matches the current day (resp. month), the counter is zeroed on access.
type ChatLimits struct {
	DailyCount     int    `json:"dailyCount"`
	MonthlyCount   int    `json:"monthlyCount"`
	LastResetDate  string `json:"lastResetDate"`  // YYYY-MM-DD
	LastResetMonth string `json:"lastResetMonth"` // YYYY-MM
}
