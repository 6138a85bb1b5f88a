package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"wellness/models"
)

// memDeviceStore is the in-memory DeviceStore test double.
type memDeviceStore struct {
	mu         sync.Mutex
	m          map[string][]byte
	failWrites bool
	failReads  bool
}

func newMemDeviceStore() *memDeviceStore {
	return &memDeviceStore{m: make(map[string][]byte)}
}

func (s *memDeviceStore) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failReads {
		return nil, errors.New("read failure")
	}
	v, ok := s.m[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (s *memDeviceStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("quota exceeded")
	}
	s.m[key] = value
	return nil
}

func (s *memDeviceStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// memCacheStore is the in-memory CacheStore test double.
type memCacheStore struct {
	mu      sync.Mutex
	m       map[string][]byte
	failSet bool
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{m: make(map[string][]byte)}
}

func (s *memCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memCacheStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return errors.New("cache write failure")
	}
	s.m[key] = value
	return nil
}

func (s *memCacheStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (s *memCacheStore) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.m, k)
	}
	return nil
}

func (s *memCacheStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// fakeClient records what the worker sends it.
type fakeClient struct {
	mu      sync.Mutex
	id      string
	account uint
	url     string
	focused int
	msgs    []fakeMsg
}

type fakeMsg struct {
	Kind    string
	Payload any
}

func (c *fakeClient) ID() string      { return c.id }
func (c *fakeClient) AccountID() uint { return c.account }
func (c *fakeClient) URL() string     { return c.url }

func (c *fakeClient) Focus() error {
	c.mu.Lock()
	c.focused++
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) Send(kind string, payload any) error {
	c.mu.Lock()
	c.msgs = append(c.msgs, fakeMsg{Kind: kind, Payload: payload})
	c.mu.Unlock()
	return nil
}

func (c *fakeClient) received(kind string) []fakeMsg {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []fakeMsg
	for _, m := range c.msgs {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// fakeRegistration is a deterministic Registration double.
type fakeRegistration struct {
	mu             sync.Mutex
	sub            *Subscription
	subscribeCalls int
	subscribeErr   error
	readyErr       error
	shown          []models.NotificationOptions
	order          *[]string // shared op log, see fakeDirectory
	dropAfterSub   bool      // platform truth loses the subscription
}

func (r *fakeRegistration) Ready(ctx context.Context) error { return r.readyErr }

func (r *fakeRegistration) Subscription(ctx context.Context) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropAfterSub {
		return nil, nil
	}
	return r.sub, nil
}

func (r *fakeRegistration) Subscribe(ctx context.Context, serverKey []byte) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribeCalls++
	if r.subscribeErr != nil {
		return nil, r.subscribeErr
	}
	r.sub = &Subscription{Endpoint: "https://push.example/ep-1", P256dh: "p", Auth: "a"}
	return r.sub, nil
}

func (r *fakeRegistration) Unsubscribe(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.order != nil {
		*r.order = append(*r.order, "unsubscribe")
	}
	had := r.sub != nil
	r.sub = nil
	return had, nil
}

func (r *fakeRegistration) ShowNotification(ctx context.Context, opts models.NotificationOptions) error {
	r.mu.Lock()
	r.shown = append(r.shown, opts)
	r.mu.Unlock()
	return nil
}

// fakePlatform wires capabilities, permission outcome and a registration.
type fakePlatform struct {
	notifications bool
	serviceWorker bool
	pushManager   bool
	permission    PermissionState
	reg           Registration
	regErr        error
}

func allCapsPlatform(reg Registration) *fakePlatform {
	return &fakePlatform{
		notifications: true,
		serviceWorker: true,
		pushManager:   true,
		permission:    PermissionGranted,
		reg:           reg,
	}
}

func (p *fakePlatform) HasNotifications() bool { return p.notifications }
func (p *fakePlatform) HasServiceWorker() bool { return p.serviceWorker }
func (p *fakePlatform) HasPushManager() bool   { return p.pushManager }

func (p *fakePlatform) RequestPermission(ctx context.Context) (PermissionState, error) {
	return p.permission, nil
}

func (p *fakePlatform) Register(ctx context.Context, scope string) (Registration, error) {
	if p.regErr != nil {
		return nil, p.regErr
	}
	return p.reg, nil
}

// fakeDirectory records remote-sync traffic and can fail on demand.
type fakeDirectory struct {
	mu        sync.Mutex
	upserts   []Subscription
	removed   []string
	upsertErr error
	removeErr error
	order     *[]string
}

func (d *fakeDirectory) Upsert(ctx context.Context, accountID uint, sub *Subscription) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.order != nil {
		*d.order = append(*d.order, "upsert")
	}
	if d.upsertErr != nil {
		return d.upsertErr
	}
	d.upserts = append(d.upserts, *sub)
	return nil
}

func (d *fakeDirectory) Remove(ctx context.Context, accountID uint, endpoint string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.order != nil {
		*d.order = append(*d.order, "remove")
	}
	if d.removeErr != nil {
		return d.removeErr
	}
	d.removed = append(d.removed, endpoint)
	return nil
}

// fakeNotifier records reminder renderings.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []fakeNotification
}

type fakeNotification struct {
	AccountID uint
	Options   models.NotificationOptions
}

func (n *fakeNotifier) NotifyAccount(ctx context.Context, accountID uint, opts models.NotificationOptions) error {
	n.mu.Lock()
	n.calls = append(n.calls, fakeNotification{AccountID: accountID, Options: opts})
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}
