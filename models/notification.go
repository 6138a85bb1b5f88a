package models

import "time"

type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// NotificationOptions is the payload shape the renderer expects. Field names
// are fixed; push senders must match them exactly.
type NotificationOptions struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon"`
	Badge              string               `json:"badge"`
	Tag                string               `json:"tag"`
	RequireInteraction bool                 `json:"requireInteraction"`
	URL                string               `json:"url,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	Data               map[string]any       `json:"data,omitempty"`
}

// TargetURL is the client URL a click on this notification should land on.
func (n NotificationOptions) TargetURL() string {
	if n.Data != nil {
		if u, ok := n.Data["url"].(string); ok && u != "" {
			return u
		}
	}
	if n.URL != "" {
		return n.URL
	}
	return "/"
}

// Notification is the rendered-notification history row, written by the
// background worker when it shows a notification.
type Notification struct {
	ID        string `gorm:"primaryKey;size:36"` // uuid
	AccountID uint   `gorm:"index"`
	Title     string `gorm:"size:128"`
	Body      string `gorm:"type:text"`
	Tag       string `gorm:"size:64"`
	URL       string `gorm:"size:256"`
	CreatedAt time.Time
}
