package services

import (
	"context"
	"fmt"
	"sync"

	"wellness/models"
	"wellness/utils"

	"go.uber.org/zap"
)

// GatewayStatus is the reconciled per-device notification state.
type GatewayStatus struct {
	Supported    bool          `json:"supported"`
	Enabled      bool          `json:"enabled"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// NotificationGateway orchestrates the enable/disable saga: permission,
// registration, subscription creation and synchronization to the remote
// directory. Final state is always reconciled from platform truth, never
// assumed from local success.
type NotificationGateway struct {
	platform  Platform
	dir       SubscriptionDirectory
	serverKey string // URL-safe base64 application server key
	log       *zap.Logger

	mu      sync.Mutex
	enabled bool
	sub     *Subscription
	reg     Registration
}

func NewNotificationGateway(platform Platform, dir SubscriptionDirectory, serverKey string, log *zap.Logger) *NotificationGateway {
	return &NotificationGateway{
		platform:  platform,
		dir:       dir,
		serverKey: serverKey,
		log:       log,
	}
}

// IsSupported requires all three platform capabilities.
func (g *NotificationGateway) IsSupported() bool {
	return g.platform.HasNotifications() &&
		g.platform.HasServiceWorker() &&
		g.platform.HasPushManager()
}

func (g *NotificationGateway) Status() GatewayStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return GatewayStatus{Supported: g.IsSupported(), Enabled: g.enabled, Subscription: g.sub}
}

// Enable runs the subscription saga for accountID. Each step can fail
// independently; permission and capability failures are terminal typed
// errors, a directory failure is logged and does not roll back the local
// outcome.
func (g *NotificationGateway) Enable(ctx context.Context, accountID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsSupported() {
		return ErrNotSupported
	}

	perm, err := g.platform.RequestPermission(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	if perm != PermissionGranted {
		return ErrPermissionDenied
	}

	reg, err := g.platform.Register(ctx, "/")
	if err != nil {
		return fmt.Errorf("%w: register: %v", ErrSubscriptionFailed, err)
	}
	if err := reg.Ready(ctx); err != nil {
		return fmt.Errorf("%w: activation: %v", ErrSubscriptionFailed, err)
	}

	// Reuse the subscription the process already holds; at most one
	// subscription exists per device.
	sub, err := reg.Subscription(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubscriptionFailed, err)
	}
	if sub == nil {
		if g.serverKey == "" {
			return ErrMissingServerKey
		}
		key, err := utils.DecodeServerKey(g.serverKey)
		if err != nil {
			return fmt.Errorf("%w: server key: %v", ErrSubscriptionFailed, err)
		}
		sub, err = reg.Subscribe(ctx, key)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSubscriptionFailed, err)
		}
	}

	if err := g.dir.Upsert(ctx, accountID, sub); err != nil {
		// Optimistic local outcome stands; device and directory may
		// drift until the next enable.
		g.log.Error("subscription_sync_failed",
			zap.Uint("account_id", accountID),
			zap.Error(fmt.Errorf("%w: %v", ErrRemoteSync, err)),
		)
	}

	// Reconcile from platform truth, not from the value subscribed above.
	current, err := reg.Subscription(ctx)
	if err != nil || current == nil {
		g.enabled = false
		g.sub = nil
		return fmt.Errorf("%w: subscription not present after subscribe", ErrSubscriptionFailed)
	}
	g.enabled = true
	g.sub = current
	g.reg = reg
	return nil
}

// Disable removes the remote record first, then unsubscribes locally. A
// directory failure does not stop the local unsubscribe, which can leave a
// stale remote record behind.
func (g *NotificationGateway) Disable(ctx context.Context, accountID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sub != nil {
		if err := g.dir.Remove(ctx, accountID, g.sub.Endpoint); err != nil {
			g.log.Error("subscription_remove_failed",
				zap.Uint("account_id", accountID),
				zap.Error(fmt.Errorf("%w: %v", ErrRemoteSync, err)),
			)
		}
	}

	if g.reg != nil {
		if _, err := g.reg.Unsubscribe(ctx); err != nil {
			g.log.Error("unsubscribe_failed", zap.Error(err))
		}
	}

	g.enabled = false
	g.sub = nil
	return nil
}

// SendTest renders a fixed test notification through the background
// process. Requires an enabled subscription.
func (g *NotificationGateway) SendTest(ctx context.Context) error {
	g.mu.Lock()
	reg, enabled := g.reg, g.enabled
	g.mu.Unlock()

	if !enabled || reg == nil {
		return ErrNotEnabled
	}
	return reg.ShowNotification(ctx, models.NotificationOptions{
		Title: "Wellness",
		Body:  "Notifications are working!",
		Icon:  "/icons/icon-192.png",
		Badge: "/icons/badge-72.png",
		Tag:   "test-notification",
	})
}
