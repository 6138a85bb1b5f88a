package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is one open UI surface the background worker can control.
type Client interface {
	ID() string
	AccountID() uint
	// URL is the location the client is currently showing.
	URL() string
	Focus() error
	Send(kind string, payload any) error
}

// WSClient adapts a websocket connection to the Client interface. Control
// messages ({kind, payload}) are pushed to the page; the page reports its
// current location through SetURL.
type WSClient struct {
	id        string
	accountID uint

	mu   sync.Mutex
	url  string
	conn *websocket.Conn
}

func NewWSClient(id string, accountID uint, url string, conn *websocket.Conn) *WSClient {
	return &WSClient{id: id, accountID: accountID, url: url, conn: conn}
}

func (c *WSClient) ID() string      { return c.id }
func (c *WSClient) AccountID() uint { return c.accountID }

func (c *WSClient) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *WSClient) SetURL(url string) {
	c.mu.Lock()
	c.url = url
	c.mu.Unlock()
}

func (c *WSClient) Focus() error {
	return c.Send("focus", nil)
}

func (c *WSClient) Send(kind string, payload any) error {
	msg, err := json.Marshal(map[string]any{"kind": kind, "payload": payload})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.Close()
}

// ClientRegistry tracks the open clients of this device. The worker uses it
// to claim clients on activation and to route notification clicks.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]Client
	opener  func(url string) error
	log     *zap.Logger
}

func NewClientRegistry(log *zap.Logger) *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]Client), log: log}
}

// SetOpener installs the open-new-client fallback used when no existing
// client shows the target URL.
func (r *ClientRegistry) SetOpener(open func(url string) error) {
	r.mu.Lock()
	r.opener = open
	r.mu.Unlock()
}

func (r *ClientRegistry) Register(c Client) {
	r.mu.Lock()
	r.clients[c.ID()] = c
	r.mu.Unlock()
}

func (r *ClientRegistry) Unregister(c Client) {
	r.mu.Lock()
	delete(r.clients, c.ID())
	r.mu.Unlock()
}

// ClaimAll makes every open client use the given worker version
// immediately, without waiting for a reload.
func (r *ClientRegistry) ClaimAll(version string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if err := c.Send("claimed", map[string]string{"version": version}); err != nil {
			r.log.Warn("client_claim_failed", zap.String("client_id", c.ID()), zap.Error(err))
		}
	}
}

// Broadcast sends a control message to every client of the account.
func (r *ClientRegistry) Broadcast(accountID uint, kind string, payload any) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if accountID != 0 && c.AccountID() != accountID {
			continue
		}
		if err := c.Send(kind, payload); err != nil {
			r.log.Warn("client_send_failed", zap.String("client_id", c.ID()), zap.Error(err))
		}
	}
}

// FocusOrOpen focuses the first client already showing url, or opens a new
// one when none matches.
func (r *ClientRegistry) FocusOrOpen(url string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clients {
		if c.URL() == url {
			return c.Focus()
		}
	}
	if r.opener != nil {
		return r.opener(url)
	}
	r.log.Info("no_client_for_url", zap.String("url", url))
	return nil
}
