package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"wellness/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	Registry *services.ClientRegistry
}

func NewRealtimeController(r *services.ClientRegistry) *RealtimeController {
	return &RealtimeController{Registry: r}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind a proxy if needed
}

type clientMsg struct {
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// ClientWS attaches one open UI surface to the registry. The page reports
// navigation through {"kind":"navigate","url":...} messages so the worker
// can route notification clicks to it.
func (rc *RealtimeController) ClientWS(c *gin.Context) {
	uid := c.GetUint("accountID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	startURL := c.DefaultQuery("url", "/")
	cl := services.NewWSClient(uuid.NewString(), uid, startURL, conn)
	rc.Registry.Register(cl)

	// keep connections alive through proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			rc.Registry.Unregister(cl)
			cl.Close()
			return
		}
		var msg clientMsg
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		if msg.Kind == "navigate" && msg.URL != "" {
			cl.SetURL(msg.URL)
		}
	}
}
