package websocket

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CompanyScope and CameraScope build the subscription keys used across the
// hub and the notifier.
func CompanyScope(id int64) string { return "company:" + strconv.FormatInt(id, 10) }
func CameraScope(id int64) string  { return "camera:" + strconv.FormatInt(id, 10) }

// Client represents a websocket connection subscribed to one or more scopes.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	scopes []string
}

// Hub manages active clients and per-scope broadcasts.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan scopedMessage
	// Map of scope key to set of clients
	clientsByScope map[string]map[*Client]bool
}

type scopedMessage struct {
	scope   string
	payload []byte
}

// NewHub creates and starts a new Hub loop.
func NewHub() *Hub {
	h := &Hub{
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		broadcast:      make(chan scopedMessage, 64),
		clientsByScope: make(map[string]map[*Client]bool),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			for _, scope := range c.scopes {
				set, ok := h.clientsByScope[scope]
				if !ok {
					set = make(map[*Client]bool)
					h.clientsByScope[scope] = set
				}
				set[c] = true
			}
		case c := <-h.unregister:
			h.drop(c)
		case msg := <-h.broadcast:
			set, ok := h.clientsByScope[msg.scope]
			if !ok {
				continue
			}
			for c := range set {
				select {
				case c.send <- msg.payload:
				default:
					// Backpressure: drop and disconnect slow clients
					h.drop(c)
				}
			}
		}
	}
}

// drop removes a client from every scope it subscribed to.
func (h *Hub) drop(c *Client) {
	removed := false
	for _, scope := range c.scopes {
		set, ok := h.clientsByScope[scope]
		if !ok {
			continue
		}
		if _, exists := set[c]; exists {
			delete(set, c)
			removed = true
			if len(set) == 0 {
				delete(h.clientsByScope, scope)
			}
		}
	}
	if removed {
		close(c.send)
	}
}

// Broadcast queues a payload for every client subscribed to the scope.
func (h *Hub) Broadcast(scope string, payload []byte) {
	if h == nil {
		return
	}
	h.broadcast <- scopedMessage{scope: scope, payload: payload}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the HTTP connection and registers the client under its
// company scope plus, when a camera query parameter is present, that camera's
// scope. Authentication happens upstream; this handler only reads the
// companyId the auth middleware stored in the context.
func ServeWS(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := c.GetInt64("companyId")
		if companyID == 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		scopes := []string{CompanyScope(companyID)}
		if cam := c.Query("camera"); cam != "" {
			cameraID, err := strconv.ParseInt(cam, 10, 64)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			scopes = append(scopes, CameraScope(cameraID))
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", "err", err)
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), scopes: scopes}
		h.register <- client

		// Reader goroutine
		go func() {
			defer func() {
				h.unregister <- client
				_ = conn.Close()
			}()
			conn.SetReadLimit(1024)
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			})
			for {
				_, _, err := conn.ReadMessage()
				if err != nil {
					break
				}
			}
		}()

		// Writer loop (same goroutine)
		for msg := range client.send {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
	}
}

// Debug helper to push a message to a scope via HTTP
func (h *Hub) DebugSend(c *gin.Context) {
	scope := c.Query("scope")
	msg := c.Query("msg")
	h.Broadcast(scope, []byte(msg))
	c.JSON(http.StatusOK, gin.H{"ok": fmt.Sprintf("sent to %s", scope)})
}
