package services

import "errors"

// Failure kinds surfaced by the engine. Capability and permission failures
// reach callers as typed errors; device-storage failures are logged and
// swallowed; remote-sync failures leave local state on its optimistic
// outcome.
var (
	// ErrNotSupported means a required platform capability is missing.
	// Not retriable; the caller should show alternative guidance.
	ErrNotSupported = errors.New("notifications not supported on this platform")

	// ErrPermissionDenied means the user declined notification permission.
	// Terminal for the session; recovery needs a platform settings change.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrSubscriptionFailed wraps network or key-decoding errors during
	// subscribe. Manual retry re-derives state from platform truth.
	ErrSubscriptionFailed = errors.New("push subscription failed")

	// ErrRemoteSync marks a subscription-directory upsert/delete failure.
	ErrRemoteSync = errors.New("subscription directory sync failed")

	// ErrNotEnabled is returned by operations that require an enabled
	// subscription.
	ErrNotEnabled = errors.New("notifications not enabled")

	// ErrMissingServerKey means no application server key was configured.
	ErrMissingServerKey = errors.New("push server key not configured")

	// ErrKeyNotFound is returned by a device store when a key is absent.
	ErrKeyNotFound = errors.New("key not found")
)
