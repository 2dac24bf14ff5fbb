package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shoppable-video/backend/internal/player"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // embeds run on arbitrary host pages
	},
}

// WSMessage is the WebSocket message envelope.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type initPayload struct {
	player.Options
	Containers []string `json:"containers"`
}

// Client is one embed connection. It hosts at most one player session.
type Client struct {
	ID          string
	ConnectedAt time.Time
	hub         *Hub
	gw          *Gateway
	conn        *websocket.Conn
	send        chan WSMessage
	done        chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
	userAgent   string
	remoteAddr  string

	mu         sync.Mutex
	player     *player.Controller
	containers map[string]bool // nil when the page did not list its containers
}

// ServeWs handles the WebSocket upgrade and runs the client loop.
func ServeWs(gw *Gateway, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:          uuid.New().String(),
			ConnectedAt: time.Now(),
			hub:         gw.hub,
			gw:          gw,
			conn:        conn,
			send:        make(chan WSMessage, 256),
			done:        make(chan struct{}),
			logger:      logger,
			userAgent:   c.Request.UserAgent(),
			remoteAddr:  c.ClientIP(),
		}
		if !gw.hub.Register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}
		go client.writePump()
		client.readPump()
	}
}

// Container implements player.Host using the containers listed at init.
func (c *Client) Container(id string) (player.Surface, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.containers != nil && !c.containers[id] {
		return nil, false
	}
	return surface{c}, true
}

func (c *Client) readPump() {
	defer func() {
		c.close()
		c.hub.Unregister(c)
	}()

	c.conn.SetReadLimit(65536)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			break
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(PongWait * time.Second))
		c.handle(msg)
	}
}

func (c *Client) handle(msg WSMessage) {
	if msg.Event == "init" {
		c.init(msg.Data)
		return
	}

	c.mu.Lock()
	p := c.player
	c.mu.Unlock()
	if p == nil {
		c.emit("error", map[string]string{"message": "player not initialized"})
		return
	}

	switch msg.Event {
	case "play":
		p.Play()
	case "pause":
		p.Pause()
	case "timeupdate":
		var payload struct {
			CurrentTime float64 `json:"currentTime"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err == nil {
			p.TimeUpdate(payload.CurrentTime)
		}
	case "click":
		var payload struct {
			PlacementID string `json:"placementId"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err == nil && payload.PlacementID != "" {
			p.Click(payload.PlacementID)
		}
	case "destroy":
		p.Destroy()
	default:
		// ignore
	}
}

func (c *Client) init(data json.RawMessage) {
	var payload initPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.emit("error", map[string]string{"message": "invalid init payload"})
		return
	}
	if !c.gw.Allowed(payload.APIURL) {
		c.logger.Warn("embed init rejected", zap.String("api_url", payload.APIURL), zap.String("client_id", c.ID))
		c.emit("error", map[string]string{"message": "apiUrl not allowed"})
		return
	}

	c.mu.Lock()
	if c.player != nil {
		c.mu.Unlock()
		c.emit("error", map[string]string{"message": "player already initialized"})
		return
	}
	if payload.Containers != nil {
		c.containers = make(map[string]bool, len(payload.Containers))
		for _, id := range payload.Containers {
			c.containers[id] = true
		}
	}
	c.mu.Unlock()

	p := c.gw.start(c, payload.Options)

	c.mu.Lock()
	c.player = p
	c.mu.Unlock()

	select {
	case <-c.done:
		// connection closed while the session was starting
		p.Destroy()
	default:
	}
}

// close destroys the session and the connection. Safe to call more than once.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		p := c.player
		c.mu.Unlock()
		if p != nil {
			p.Destroy()
		}
		close(c.done)
	})
}

func (c *Client) emit(event string, payload interface{}) {
	msg, err := encode(event, payload)
	if err != nil {
		c.logger.Warn("encode ws message failed", zap.String("event", event), zap.Error(err))
		return
	}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		// buffer full, skip
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(PingInterval * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// surface draws a player session onto the embed client.
type surface struct {
	c *Client
}

func (s surface) MountVideo(m player.Mount) { s.c.emit("mount", m) }

func (s surface) ShowError(msg string) {
	s.c.emit("error", map[string]string{"message": msg})
}

func (s surface) ReplaceOverlay(f player.Frame) { s.c.emit("overlay", f) }

func (s surface) Open(url string) {
	s.c.emit("open", map[string]string{"url": url})
}
