package services

import (
	"context"

	"wellness/models"
)

// PermissionState mirrors the platform permission values.
type PermissionState string

const (
	PermissionDefault PermissionState = "default"
	PermissionGranted PermissionState = "granted"
	PermissionDenied  PermissionState = "denied"
)

// Subscription is the platform-issued push credential for this device.
type Subscription struct {
	Endpoint       string `json:"endpoint"`
	P256dh         string `json:"p256dh"`
	Auth           string `json:"auth"`
	ExpirationTime *int64 `json:"expirationTime"`
}

// Platform wraps the global mutable platform state (permission status,
// worker registration, push support) behind a small injectable interface so
// tests substitute deterministic fakes instead of re-implementing the
// platform.
type Platform interface {
	HasNotifications() bool
	HasServiceWorker() bool
	HasPushManager() bool

	RequestPermission(ctx context.Context) (PermissionState, error)

	// Register returns the registered background-process handle, creating
	// the registration when absent.
	Register(ctx context.Context, scope string) (Registration, error)
}

// Registration is the handle to a registered background process.
type Registration interface {
	// Ready blocks until the process has reached the activated state.
	Ready(ctx context.Context) error

	// Subscription returns the subscription the process already holds,
	// or nil when there is none. At most one subscription exists per
	// device.
	Subscription(ctx context.Context) (*Subscription, error)

	Subscribe(ctx context.Context, serverKey []byte) (*Subscription, error)
	Unsubscribe(ctx context.Context) (bool, error)

	ShowNotification(ctx context.Context, opts models.NotificationOptions) error
}

// PushManager issues and revokes subscriptions on behalf of a registration.
type PushManager interface {
	Subscription(ctx context.Context) (*Subscription, error)
	Subscribe(ctx context.Context, serverKey []byte) (*Subscription, error)
	Unsubscribe(ctx context.Context) (bool, error)
}
