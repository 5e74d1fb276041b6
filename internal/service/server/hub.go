package server

import (
	"context"
	"sync"

	"github.com/manjeet0006/fullstack-chat/internal/model"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type (
	// Presence tracks which users currently have a live connection.
	Presence interface {
		AddOnline(ctx context.Context, userID string) error
		RemoveOnline(ctx context.Context, userID string) error
		OnlineUsers(ctx context.Context) ([]string, error)
	}

	// wsConn serializes writes to a single websocket connection.
	wsConn struct {
		mu sync.Mutex
		ws *websocket.Conn
	}

	// Hub is the registry of live websocket connections. A user may hold
	// several connections at once; events addressed to a user go to all
	// of them.
	Hub struct {
		mu       sync.RWMutex
		conns    map[string]map[string]*wsConn // userID -> connID -> conn
		presence Presence
	}
)

func (c *wsConn) writeEvent(e *model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(e)
}

func NewHub(presence Presence) *Hub {
	return &Hub{
		conns:    make(map[string]map[string]*wsConn),
		presence: presence,
	}
}

// Register adds a connection for a user and returns its connection id.
// The first connection for a user marks them online and rebroadcasts the
// online-user list.
func (h *Hub) Register(ctx context.Context, userID string, ws *websocket.Conn) string {
	connID := uuid.NewString()

	h.mu.Lock()
	first := len(h.conns[userID]) == 0
	if h.conns[userID] == nil {
		h.conns[userID] = make(map[string]*wsConn)
	}
	h.conns[userID][connID] = &wsConn{ws: ws}
	h.mu.Unlock()

	if first {
		if err := h.presence.AddOnline(ctx, userID); err != nil {
			log.Error("presence add failed", zap.Error(err))
		}
	}
	h.broadcastOnlineUsers(ctx)
	return connID
}

// Unregister drops a connection. The last connection for a user marks
// them offline and rebroadcasts the online-user list.
func (h *Hub) Unregister(ctx context.Context, userID, connID string) {
	h.mu.Lock()
	delete(h.conns[userID], connID)
	last := len(h.conns[userID]) == 0
	if last {
		delete(h.conns, userID)
	}
	h.mu.Unlock()

	if last {
		if err := h.presence.RemoveOnline(ctx, userID); err != nil {
			log.Error("presence remove failed", zap.Error(err))
		}
	}
	h.broadcastOnlineUsers(ctx)
}

// SendNewMessage pushes a newMessage event to the recipient's live
// connections.
func (h *Hub) SendNewMessage(msg *model.Message) {
	event, err := model.NewEvent(model.EventNewMessage, msg)
	if err != nil {
		log.Error("encode newMessage event failed", zap.Error(err))
		return
	}
	h.SendToUser(msg.ReceiverID.Hex(), event)
}

// SendToUser writes an event to every live connection of one user.
func (h *Hub) SendToUser(userID string, event *model.Event) {
	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.conns[userID]))
	for _, c := range h.conns[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeEvent(event); err != nil {
			log.Debug("write to user failed", zap.String("userId", userID), zap.Error(err))
		}
	}
}

// Broadcast writes an event to every live connection.
func (h *Hub) Broadcast(event *model.Event) {
	h.mu.RLock()
	var conns []*wsConn
	for _, byConn := range h.conns {
		for _, c := range byConn {
			conns = append(conns, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.writeEvent(event); err != nil {
			log.Debug("broadcast write failed", zap.Error(err))
		}
	}
}

func (h *Hub) broadcastOnlineUsers(ctx context.Context) {
	online, err := h.presence.OnlineUsers(ctx)
	if err != nil {
		log.Error("presence list failed", zap.Error(err))
		return
	}
	if online == nil {
		online = []string{}
	}

	event, err := model.NewEvent(model.EventGetOnlineUsers, online)
	if err != nil {
		log.Error("encode getOnlineUsers event failed", zap.Error(err))
		return
	}
	h.Broadcast(event)
}
