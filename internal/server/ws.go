// internal/server/ws.go
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JayAllanBaker/KingsCorner/internal/auth"
)

// wsMessage is the client-to-server envelope on the /ws socket.
type wsMessage struct {
	Type   string                 `json:"type"`
	Token  string                 `json:"token,omitempty"`
	GameID string                 `json:"gameId,omitempty"`
	Move   map[string]interface{} `json:"move,omitempty"`
	State  map[string]interface{} `json:"state,omitempty"`
}

// wsClient is one connected socket and its room membership.
type wsClient struct {
	conn   *websocket.Conn
	userID uuid.UUID
	gameID uuid.UUID
}

// Hub is a broadcast relay: clients authenticate, join a game room, and
// messages are fanned out to other room members. It carries no game state
// and performs no validation of relayed moves.
type Hub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// NewHub creates an empty relay hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// HandleWS upgrades the connection and runs the client read loop.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logrus.Warnf("ws accept: %v", err)
		return
	}
	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	logrus.Debug("ws client connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		logrus.Debug("ws client disconnected")
	}()

	ctx := r.Context()
	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return
		}
		h.handleMessage(ctx, client, msg)
	}
}

func (h *Hub) handleMessage(ctx context.Context, client *wsClient, msg wsMessage) {
	switch msg.Type {
	case "auth":
		claims, err := auth.ParseToken(msg.Token)
		if err != nil {
			logrus.Debugf("ws auth failed: %v", err)
			return
		}
		h.mu.Lock()
		client.userID = claims.UserID
		h.mu.Unlock()
		logrus.Debugf("ws client authenticated as %s", claims.UserID)

	case "join_game":
		gameID, err := uuid.Parse(msg.GameID)
		if err != nil {
			return
		}
		h.mu.Lock()
		client.gameID = gameID
		h.mu.Unlock()
		logrus.Debugf("ws client joined game %s", gameID)

	case "game_move":
		h.mu.Lock()
		gameID := client.gameID
		h.mu.Unlock()
		h.broadcastToGame(gameID, map[string]interface{}{
			"type":  "game_update",
			"move":  msg.Move,
			"state": msg.State,
		}, client)

	default:
		logrus.Debugf("ws unknown message type %q", msg.Type)
	}
}

// broadcastToGame sends a payload to every room member except the sender.
func (h *Hub) broadcastToGame(gameID uuid.UUID, payload interface{}, exclude *wsClient) {
	if gameID == uuid.Nil {
		return
	}
	for _, c := range h.roomMembers(gameID, exclude) {
		h.send(c, payload)
	}
}

// BroadcastToGame sends a payload to every member of a game room.
func (h *Hub) BroadcastToGame(gameID uuid.UUID, payload interface{}) {
	h.broadcastToGame(gameID, payload, nil)
}

// SendToUser sends a payload to every authenticated socket of a user.
func (h *Hub) SendToUser(userID uuid.UUID, payload interface{}) {
	h.mu.Lock()
	targets := make([]*wsClient, 0, 1)
	for c := range h.clients {
		if c.userID == userID {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		h.send(c, payload)
	}
}

func (h *Hub) roomMembers(gameID uuid.UUID, exclude *wsClient) []*wsClient {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		if c.gameID == gameID && c != exclude {
			members = append(members, c)
		}
	}
	return members
}

func (h *Hub) send(c *wsClient, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c.conn, payload); err != nil {
		logrus.Debugf("ws send: %v", err)
	}
}
