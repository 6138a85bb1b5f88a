package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testServerKey = "BEl62iUYgUivxIkv69yViEuiBIa-Ib9-SkvMeAtA3LFgDzkrxZJjSgSnfckjBJuBkr3qBUYIHBQFLXYp5Nksh8U"

func newTestGateway(reg *fakeRegistration, dir *fakeDirectory) (*NotificationGateway, *fakePlatform) {
	platform := allCapsPlatform(reg)
	g := NewNotificationGateway(platform, dir, testServerKey, zap.NewNop())
	return g, platform
}

func TestEnableFailsWhenUnsupported(t *testing.T) {
	g, platform := newTestGateway(&fakeRegistration{}, &fakeDirectory{})
	platform.pushManager = false

	err := g.Enable(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotSupported)
	assert.False(t, g.Status().Supported)
}

func TestEnableFailsWhenPermissionDenied(t *testing.T) {
	g, platform := newTestGateway(&fakeRegistration{}, &fakeDirectory{})
	platform.permission = PermissionDenied

	err := g.Enable(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.False(t, g.Status().Enabled)
}

func TestEnableFailsWithoutServerKey(t *testing.T) {
	reg := &fakeRegistration{}
	g := NewNotificationGateway(allCapsPlatform(reg), &fakeDirectory{}, "", zap.NewNop())

	err := g.Enable(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMissingServerKey)
	assert.Zero(t, reg.subscribeCalls)
}

func TestEnableSubscribesAndSyncsDirectory(t *testing.T) {
	reg := &fakeRegistration{}
	dir := &fakeDirectory{}
	g, _ := newTestGateway(reg, dir)

	require.NoError(t, g.Enable(context.Background(), 42))

	status := g.Status()
	assert.True(t, status.Enabled)
	require.NotNil(t, status.Subscription)
	assert.Equal(t, "https://push.example/ep-1", status.Subscription.Endpoint)

	require.Len(t, dir.upserts, 1)
	assert.Equal(t, "https://push.example/ep-1", dir.upserts[0].Endpoint)
}

func TestEnableReusesExistingSubscription(t *testing.T) {
	reg := &fakeRegistration{sub: &Subscription{Endpoint: "https://push.example/ep-0"}}
	dir := &fakeDirectory{}
	g, _ := newTestGateway(reg, dir)

	require.NoError(t, g.Enable(context.Background(), 42))

	// one subscription per device: no second subscribe call
	assert.Zero(t, reg.subscribeCalls)
	assert.Equal(t, "https://push.example/ep-0", g.Status().Subscription.Endpoint)
}

func TestEnableIsIdempotent(t *testing.T) {
	reg := &fakeRegistration{}
	g, _ := newTestGateway(reg, &fakeDirectory{})

	require.NoError(t, g.Enable(context.Background(), 42))
	require.NoError(t, g.Enable(context.Background(), 42))

	assert.Equal(t, 1, reg.subscribeCalls)
}

func TestEnableSurvivesDirectoryFailure(t *testing.T) {
	reg := &fakeRegistration{}
	dir := &fakeDirectory{upsertErr: errors.New("backend down")}
	g, _ := newTestGateway(reg, dir)

	// the optimistic local outcome stands even when the sync fails
	require.NoError(t, g.Enable(context.Background(), 42))
	assert.True(t, g.Status().Enabled)
}

func TestEnableReconcilesFromPlatformTruth(t *testing.T) {
	reg := &fakeRegistration{dropAfterSub: true}
	g, _ := newTestGateway(reg, &fakeDirectory{})

	err := g.Enable(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSubscriptionFailed)
	assert.False(t, g.Status().Enabled)
	assert.Nil(t, g.Status().Subscription)
}

func TestEnableWrapsSubscribeFailure(t *testing.T) {
	reg := &fakeRegistration{subscribeErr: errors.New("push service unavailable")}
	g, _ := newTestGateway(reg, &fakeDirectory{})

	err := g.Enable(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSubscriptionFailed)
}

func TestEnableWrapsActivationFailure(t *testing.T) {
	reg := &fakeRegistration{readyErr: errors.New("activation timed out")}
	g, _ := newTestGateway(reg, &fakeDirectory{})

	err := g.Enable(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSubscriptionFailed)
}

func TestDisableRemovesRemoteBeforeLocal(t *testing.T) {
	var order []string
	reg := &fakeRegistration{order: &order}
	dir := &fakeDirectory{order: &order}
	g, _ := newTestGateway(reg, dir)

	require.NoError(t, g.Enable(context.Background(), 42))
	order = order[:0]

	require.NoError(t, g.Disable(context.Background(), 42))
	assert.Equal(t, []string{"remove", "unsubscribe"}, order)
	assert.Equal(t, []string{"https://push.example/ep-1"}, dir.removed)
	assert.False(t, g.Status().Enabled)
}

func TestDisableContinuesPastDirectoryFailure(t *testing.T) {
	reg := &fakeRegistration{}
	dir := &fakeDirectory{}
	g, _ := newTestGateway(reg, dir)
	require.NoError(t, g.Enable(context.Background(), 42))

	dir.removeErr = errors.New("backend down")
	require.NoError(t, g.Disable(context.Background(), 42))

	// local unsubscribe still ran; the stale remote record is accepted
	sub, _ := reg.Subscription(context.Background())
	assert.Nil(t, sub)
	assert.False(t, g.Status().Enabled)
}

func TestDisableWithoutEnableIsANoop(t *testing.T) {
	dir := &fakeDirectory{}
	g, _ := newTestGateway(&fakeRegistration{}, dir)

	require.NoError(t, g.Disable(context.Background(), 42))
	assert.Empty(t, dir.removed)
}

func TestSendTestRequiresEnabled(t *testing.T) {
	reg := &fakeRegistration{}
	g, _ := newTestGateway(reg, &fakeDirectory{})

	assert.ErrorIs(t, g.SendTest(context.Background()), ErrNotEnabled)

	require.NoError(t, g.Enable(context.Background(), 42))
	require.NoError(t, g.SendTest(context.Background()))

	require.Len(t, reg.shown, 1)
	assert.Equal(t, "test-notification", reg.shown[0].Tag)
}
