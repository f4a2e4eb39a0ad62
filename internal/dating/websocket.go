package dating

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/imadgeboyega/kiekky-matchengine/internal/auth"
	"github.com/imadgeboyega/kiekky-matchengine/internal/matching"
)

const MessageCompatibilityUpdated = "compatibility_updated"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Configure origin checking in production
		return true
	},
}

// Hub owns the connected clients; only Run touches the client map.
type Hub struct {
	clients    map[int64]*Client
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *zap.Logger
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	userID int64
}

type Message struct {
	Type   string      `json:"type"`
	UserID int64       `json:"user_id"`
	Data   interface{} `json:"data"`
}

// CompatibilityUpdate is the payload pushed to each user of a pair.
type CompatibilityUpdate struct {
	PartnerID            int64                         `json:"partner_id"`
	OverallCompatibility int                           `json:"compatibility_score"`
	RelationshipStatus   matching.RelationshipStatus   `json:"relationship_status"`
	Record               *matching.CompatibilityRecord `json:"record"`
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[int64]*Client),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for id, client := range h.clients {
				close(client.send)
				delete(h.clients, id)
			}
			return

		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			WSConnections.Set(float64(len(h.clients)))
			h.logger.Debug("websocket connected", zap.Int64("user_id", client.userID))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				WSConnections.Set(float64(len(h.clients)))
				h.logger.Debug("websocket disconnected", zap.Int64("user_id", client.userID))
			}

		case message := <-h.broadcast:
			if client, ok := h.clients[message.UserID]; ok {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client.userID)
				}
			}
		}
	}
}

// NotifyCompatibility pushes the record to both users of the pair.
func (h *Hub) NotifyCompatibility(ctx context.Context, record *matching.CompatibilityRecord) error {
	for _, userID := range []int64{record.User1ID, record.User2ID} {
		message := Message{
			Type:   MessageCompatibilityUpdated,
			UserID: userID,
			Data: CompatibilityUpdate{
				PartnerID:            record.PartnerOf(userID),
				OverallCompatibility: record.OverallCompatibility,
				RelationshipStatus:   record.RelationshipStatus,
				Record:               record,
			},
		}
		select {
		case h.broadcast <- message:
		case <-h.done:
			// hub stopped, nobody is listening
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (h *Hub) PublishCompatibilityChanged(ctx context.Context, evt CompatibilityChanged) error {
	if evt.Record == nil {
		return nil
	}
	return h.NotifyCompatibility(ctx, evt.Record)
}

func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan Message, 256),
		userID: userID,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteJSON(message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
