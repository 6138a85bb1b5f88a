package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"wellness/models"
	"wellness/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkerState names the lifecycle states of the background process. While
// activated, the worker is either idle or handling one event; the loop is
// single-threaded, so events never overlap.
type WorkerState int32

const (
	StateInstalling WorkerState = iota
	StateActivated
	StateRedundant
)

func (s WorkerState) String() string {
	switch s {
	case StateInstalling:
		return "installing"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	default:
		return "unknown"
	}
}

// Events delivered to the worker. All cross-boundary data is serializable;
// the reply channels exist only so the dispatching side can await
// completion.
type (
	FetchEvent struct {
		Method string
		URL    string
		reply  chan fetchReply
	}
	PushEvent struct {
		AccountID uint
		Payload   []byte
		done      chan error
	}
	NotificationClickEvent struct {
		NotificationID string
		done           chan error
	}
	renderEvent struct {
		accountID uint
		opts      models.NotificationOptions
		done      chan error
	}
)

type fetchReply struct {
	res *FetchResult
	err error
}

type workerEvent any

// WorkerConfig wires the worker's collaborators.
type WorkerConfig struct {
	Version   string
	Origin    string // base URL shell assets are fetched from
	Cache     CacheStore
	Fetch     Fetcher
	Clients   *ClientRegistry
	Push      PushManager
	DenyHosts []string // defaults to defaultDenyHosts when nil
	// OnRendered runs after a notification has been rendered; the
	// application uses it to persist history rows.
	OnRendered func(n models.Notification)
	Log        *zap.Logger
}

// Worker is the independently executing background process. It runs on its
// own goroutine with no shared memory with the callers; everything crosses
// the boundary through events.
type Worker struct {
	version    string
	origin     string
	cache      CacheStore
	fetch      Fetcher
	clients    *ClientRegistry
	push       PushManager
	deny       map[string]struct{}
	onRendered func(models.Notification)
	log        *zap.Logger

	state     atomic.Int32
	activated chan struct{}
	events    chan workerEvent

	// live notifications, by id, until closed by a click
	liveMu sync.Mutex
	live   map[string]models.Notification

	cacheWrites sync.WaitGroup
}

func NewWorker(cfg WorkerConfig) *Worker {
	deny := cfg.DenyHosts
	if deny == nil {
		deny = defaultDenyHosts
	}
	denySet := make(map[string]struct{}, len(deny))
	for _, h := range deny {
		denySet[h] = struct{}{}
	}
	if cfg.Version == "" {
		cfg.Version = DefaultCacheVersion
	}
	w := &Worker{
		version:    cfg.Version,
		origin:     cfg.Origin,
		cache:      cfg.Cache,
		fetch:      cfg.Fetch,
		clients:    cfg.Clients,
		push:       cfg.Push,
		deny:       denySet,
		onRendered: cfg.OnRendered,
		log:        cfg.Log,
		activated:  make(chan struct{}),
		events:     make(chan workerEvent, 16),
		live:       make(map[string]models.Notification),
	}
	w.state.Store(int32(StateInstalling))
	return w
}

func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// Run executes install, activate, then the event loop until ctx is
// cancelled, at which point the worker is redundant.
func (w *Worker) Run(ctx context.Context) {
	w.handleInstall(ctx)
	w.handleActivate(ctx)

	for {
		select {
		case <-ctx.Done():
			w.state.Store(int32(StateRedundant))
			return
		case ev := <-w.events:
			w.handleEvent(ctx, ev)
		}
	}
}

// Ready blocks until the worker reaches the activated state.
func (w *Worker) Ready(ctx context.Context) error {
	select {
	case <-w.activated:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch queues an event for the worker loop.
func (w *Worker) Dispatch(ev workerEvent) error {
	if w.State() == StateRedundant {
		return errors.New("worker is redundant")
	}
	w.events <- ev
	return nil
}

// HandleFetch runs the fetch-caching policy for one request and waits for
// the outcome.
func (w *Worker) HandleFetch(ctx context.Context, method, url string) (*FetchResult, error) {
	ev := FetchEvent{Method: method, URL: url, reply: make(chan fetchReply, 1)}
	if err := w.Dispatch(ev); err != nil {
		return nil, err
	}
	select {
	case r := <-ev.reply:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HandlePush delivers a platform push payload and waits until the
// notification has been rendered. The event must not complete before
// rendering does, or the platform may suspend the worker mid-render.
func (w *Worker) HandlePush(ctx context.Context, accountID uint, payload []byte) error {
	ev := PushEvent{AccountID: accountID, Payload: payload, done: make(chan error, 1)}
	if err := w.Dispatch(ev); err != nil {
		return err
	}
	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleClick routes a notification click and waits for completion.
func (w *Worker) HandleClick(ctx context.Context, notificationID string) error {
	ev := NotificationClickEvent{NotificationID: notificationID, done: make(chan error, 1)}
	if err := w.Dispatch(ev); err != nil {
		return err
	}
	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShowNotification renders a notification with no account attribution.
// Part of the Registration interface.
func (w *Worker) ShowNotification(ctx context.Context, opts models.NotificationOptions) error {
	return w.NotifyAccount(ctx, 0, opts)
}

// NotifyAccount renders a notification attributed to an account.
func (w *Worker) NotifyAccount(ctx context.Context, accountID uint, opts models.NotificationOptions) error {
	ev := renderEvent{accountID: accountID, opts: opts, done: make(chan error, 1)}
	if err := w.Dispatch(ev); err != nil {
		return err
	}
	select {
	case err := <-ev.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscription, Subscribe and Unsubscribe complete the Registration
// interface by delegating to the push manager.
func (w *Worker) Subscription(ctx context.Context) (*Subscription, error) {
	if w.push == nil {
		return nil, ErrNotSupported
	}
	return w.push.Subscription(ctx)
}

func (w *Worker) Subscribe(ctx context.Context, serverKey []byte) (*Subscription, error) {
	if w.push == nil {
		return nil, ErrNotSupported
	}
	return w.push.Subscribe(ctx, serverKey)
}

func (w *Worker) Unsubscribe(ctx context.Context) (bool, error) {
	if w.push == nil {
		return false, ErrNotSupported
	}
	return w.push.Unsubscribe(ctx)
}

// handleInstall prefetches the shell assets into the versioned namespace.
// A failed asset is logged and skipped; installation always completes and
// skips straight to activation, trading a staleness window for
// always-latest behavior.
func (w *Worker) handleInstall(ctx context.Context) {
	for _, path := range shellAssets {
		assetURL := strings.TrimSuffix(w.origin, "/") + path
		res, err := w.fetch(ctx, assetURL)
		if err != nil {
			w.log.Warn("shell_asset_fetch_failed", zap.String("url", assetURL), zap.Error(err))
			continue
		}
		if res.Status != 200 {
			continue
		}
		if err := w.cache.Set(ctx, cacheKey(w.version, assetURL), res.Body); err != nil {
			w.log.Warn("shell_asset_cache_failed", zap.String("url", assetURL), zap.Error(err))
		}
	}
}

// handleActivate deletes every cache namespace not matching the current
// version, then claims all open clients immediately.
func (w *Worker) handleActivate(ctx context.Context) {
	keys, err := w.cache.Keys(ctx, cachePrefix+"*")
	if err != nil {
		w.log.Warn("cache_scan_failed", zap.Error(err))
	}
	current := cachePrefix + w.version + ":"
	var stale []string
	for _, k := range keys {
		if !strings.HasPrefix(k, current) {
			stale = append(stale, k)
		}
	}
	if len(stale) > 0 {
		if err := w.cache.Delete(ctx, stale...); err != nil {
			w.log.Warn("stale_cache_delete_failed", zap.Error(err))
		}
	}

	w.state.Store(int32(StateActivated))
	close(w.activated)
	w.clients.ClaimAll(w.version)
	w.log.Info("worker_activated", zap.String("version", w.version))
}

func (w *Worker) handleEvent(ctx context.Context, ev workerEvent) {
	switch e := ev.(type) {
	case FetchEvent:
		res, err := w.doFetch(ctx, e.Method, e.URL)
		e.reply <- fetchReply{res: res, err: err}
	case PushEvent:
		e.done <- w.doPush(ctx, e.AccountID, e.Payload)
	case NotificationClickEvent:
		e.done <- w.doClick(e.NotificationID)
	case renderEvent:
		e.done <- w.render(e.accountID, e.opts)
	default:
		w.log.Warn("unknown_worker_event")
	}
}

// doFetch applies the caching policy: pass through anything non-cacheable,
// otherwise network first, populating the cache asynchronously on a 200 and
// falling back to the cache on network failure. When neither succeeds the
// caller gets the network error and no synthetic offline response.
func (w *Worker) doFetch(ctx context.Context, method, url string) (*FetchResult, error) {
	if !cacheable(method, url, w.deny) {
		return w.fetch(ctx, url)
	}

	key := cacheKey(w.version, url)
	res, err := w.fetch(ctx, url)
	if err == nil {
		if res.Status == 200 {
			body := make([]byte, len(res.Body))
			copy(body, res.Body)
			w.cacheWrites.Add(1)
			go func() {
				defer w.cacheWrites.Done()
				// Cache writes never block or fail the response.
				if err := w.cache.Set(context.Background(), key, body); err != nil {
					w.log.Warn("cache_write_failed", zap.String("url", url), zap.Error(err))
				}
			}()
		}
		return res, nil
	}

	if body, ok, cerr := w.cache.Get(ctx, key); cerr == nil && ok {
		utils.CacheLookups.WithLabelValues("hit").Inc()
		return &FetchResult{Status: 200, Body: body, FromCache: true}, nil
	}
	utils.CacheLookups.WithLabelValues("miss").Inc()
	return nil, err
}

// doPush parses the payload as JSON, falling back to plain text for the
// body only, merges it over the default shape and renders. Rendering
// happens before the event completes.
func (w *Worker) doPush(ctx context.Context, accountID uint, payload []byte) error {
	opts := parsePushPayload(payload)
	return w.render(accountID, opts)
}

func (w *Worker) doClick(notificationID string) error {
	w.liveMu.Lock()
	n, ok := w.live[notificationID]
	if ok {
		delete(w.live, notificationID) // close the notification
	}
	w.liveMu.Unlock()
	if !ok {
		return errors.New("unknown notification")
	}
	return w.clients.FocusOrOpen(n.URL)
}

func (w *Worker) render(accountID uint, opts models.NotificationOptions) error {
	n := models.Notification{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Title:     opts.Title,
		Body:      opts.Body,
		Tag:       opts.Tag,
		URL:       opts.TargetURL(),
		CreatedAt: time.Now(),
	}

	w.liveMu.Lock()
	w.live[n.ID] = n
	w.liveMu.Unlock()

	w.clients.Broadcast(accountID, "notification", map[string]any{
		"id":      n.ID,
		"options": opts,
	})
	utils.NotificationsShown.Inc()
	if w.onRendered != nil {
		w.onRendered(n)
	}
	return nil
}

// parsePushPayload merges an incoming payload over the fixed default shape.
func parsePushPayload(payload []byte) models.NotificationOptions {
	opts := models.NotificationOptions{
		Title:              "Wellness",
		Body:               "You have a new notification",
		Icon:               "/icons/icon-192.png",
		Badge:              "/icons/badge-72.png",
		Tag:                "wellness-notification",
		RequireInteraction: false,
		Data:               map[string]any{"url": "/"},
	}

	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(payload, &incoming); err != nil || incoming == nil {
		// Not JSON: the raw text becomes the body, everything else
		// keeps its default.
		if len(payload) > 0 {
			opts.Body = string(payload)
		}
		return opts
	}

	pick := func(key string, dest any) {
		if raw, ok := incoming[key]; ok {
			_ = json.Unmarshal(raw, dest)
		}
	}
	pick("title", &opts.Title)
	pick("body", &opts.Body)
	pick("icon", &opts.Icon)
	pick("badge", &opts.Badge)
	pick("tag", &opts.Tag)
	pick("requireInteraction", &opts.RequireInteraction)
	pick("url", &opts.URL)
	pick("actions", &opts.Actions)
	pick("data", &opts.Data)
	return opts
}
