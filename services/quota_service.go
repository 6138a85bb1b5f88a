package services

import (
	"time"

	"wellness/models"
	"wellness/utils"
)

const (
	chatDailyLimit        = 5
	chatMonthlyLimit      = 20
	freeAccountMaxAgeDays = 30
)

// Block reasons, in the order the checks run.
const (
	ReasonAccountExpired = "Free chat access ends 30 days after registration. Upgrade to premium to continue."
	ReasonDailyLimit     = "Daily chat limit reached. Try again tomorrow."
	ReasonMonthlyLimit   = "Monthly chat limit reached."
)

type QuotaResult struct {
	CanSend bool   `json:"canSend"`
	Reason  string `json:"reason,omitempty"`
}

// QuotaGuard enforces the daily/monthly/account-age limits on the chat
// feature. It is a pure rule engine over values read from the local store;
// Increment is a separate call the caller makes once per accepted message.
// No atomicity is provided across concurrent callers.
type QuotaGuard struct {
	store *LocalStore
	now   func() time.Time
}

func NewQuotaGuard(store *LocalStore) *QuotaGuard {
	return &QuotaGuard{store: store, now: time.Now}
}

// normalize applies the lazy reset: whenever a reset marker no longer
// matches the current day/month, its counter is zeroed before anything
// reads it. Resets are computed on access, never timer-driven.
func normalize(limits models.ChatLimits, now time.Time) models.ChatLimits {
	if today := utils.DateKey(now); limits.LastResetDate != today {
		limits.DailyCount = 0
		limits.LastResetDate = today
	}
	if month := utils.MonthKey(now); limits.LastResetMonth != month {
		limits.MonthlyCount = 0
		limits.LastResetMonth = month
	}
	return limits
}

// CanSend evaluates, in order: premium bypass, account-age hard cutoff,
// lazy counter reset, daily limit, monthly limit.
func (g *QuotaGuard) CanSend(isPremium bool, accountCreatedAt *time.Time) QuotaResult {
	if isPremium {
		return QuotaResult{CanSend: true}
	}

	now := g.now()
	if accountCreatedAt != nil {
		age := now.Sub(*accountCreatedAt)
		if age >= freeAccountMaxAgeDays*24*time.Hour {
			// Terminal: not resettable, evaluated before any quota check.
			utils.QuotaDenials.WithLabelValues("account_age").Inc()
			return QuotaResult{CanSend: false, Reason: ReasonAccountExpired}
		}
	}

	limits := normalize(g.store.ChatLimits(), now)
	g.store.SaveChatLimits(limits)

	if limits.DailyCount >= chatDailyLimit {
		utils.QuotaDenials.WithLabelValues("daily").Inc()
		return QuotaResult{CanSend: false, Reason: ReasonDailyLimit}
	}
	if limits.MonthlyCount >= chatMonthlyLimit {
		utils.QuotaDenials.WithLabelValues("monthly").Inc()
		return QuotaResult{CanSend: false, Reason: ReasonMonthlyLimit}
	}
	return QuotaResult{CanSend: true}
}

// Increment records one accepted message against both windows. Callers
// invoke it exactly once per message that passed CanSend.
func (g *QuotaGuard) Increment() {
	limits := normalize(g.store.ChatLimits(), g.now())
	limits.DailyCount++
	limits.MonthlyCount++
	g.store.SaveChatLimits(limits)
}
