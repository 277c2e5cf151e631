package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/planemotion/planemotion/backend-go/internal/scene"
)

// DocLoader fetches the persisted scene document for a diagram.
type DocLoader func(ctx context.Context, diagramID string) ([]byte, error)

// DocSaver persists a scene document snapshot for a diagram.
type DocSaver func(ctx context.Context, diagramID string, doc []byte) error

type Room struct {
	diagramID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
	state     *SceneState
}

func NewRoom(diagramID string, state *SceneState) *Room {
	return &Room{
		diagramID: diagramID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
		state:     state,
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // diagramID -> room
	register   chan *Client
	unregister chan *Client
	loadDoc    DocLoader
	saveDoc    DocSaver
}

func NewHub(loadDoc DocLoader, saveDoc DocSaver) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		loadDoc:    loadDoc,
		saveDoc:    saveDoc,
	}
}

// Run services registrations and flushes dirty scenes every snapshotEvery.
// Blocks until ctx is cancelled, then saves whatever is still dirty.
func (h *Hub) Run(ctx context.Context, snapshotEvery time.Duration) {
	ticker := time.NewTicker(snapshotEvery)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(ctx, client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirtyRooms(context.WithoutCancel(ctx))
		case <-ctx.Done():
			h.saveDirtyRooms(context.WithoutCancel(ctx))
			return
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) addClient(ctx context.Context, client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok {
		state, err := h.loadState(ctx, client.DiagramID)
		if err != nil {
			h.mu.Unlock()
			slog.Error("load scene for room", "diagram", client.DiagramID, "error", err)
			client.Send(errorMessage("failed to load diagram"))
			close(client.send)
			return
		}
		room = NewRoom(client.DiagramID, state)
		h.rooms[client.DiagramID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Full document first so the client renders before any deltas arrive
	if doc, err := room.state.Document(); err == nil {
		syncPayload, _ := json.Marshal(DocSyncPayload{
			Document:  doc,
			ServerSeq: room.state.ServerSeq(),
		})
		client.Send(&Message{Type: TypeDocSync, Payload: syncPayload})
	} else {
		slog.Error("marshal scene for sync", "diagram", client.DiagramID, "error", err)
	}

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.DiagramID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.DiagramID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(context.Background(), room)
	} else {
		leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: client.UserID})
		h.broadcastToRoom(client.DiagramID, &Message{
			Type:    TypePresenceLeave,
			UserID:  client.UserID,
			Payload: leavePayload,
		}, "")
	}

	slog.Info("client left", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		return
	}
	op := submit.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.DiagramID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	serverSeq, err := room.state.Apply(&op)
	if err != nil {
		nackPayload, _ := json.Marshal(OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		})
		sender.Send(&Message{Type: TypeOpNack, Payload: nackPayload})
		return
	}

	ackPayload, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       serverSeq,
		ServerTimestamp: GetServerTimestamp(),
	})
	sender.Send(&Message{Type: TypeOpAck, Payload: ackPayload})

	broadcastPayload, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: serverSeq,
	})
	h.broadcastToRoom(sender.DiagramID, &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Payload: broadcastPayload,
	}, sender.ClientID)
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.DiagramID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.DiagramID, &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}, sender.ClientID)
}

func (h *Hub) broadcastToRoom(diagramID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[diagramID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func (h *Hub) loadState(ctx context.Context, diagramID string) (*SceneState, error) {
	data, err := h.loadDoc(ctx, diagramID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	s, err := scene.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	return NewSceneState(s), nil
}

func (h *Hub) saveDirtyRooms(ctx context.Context) {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		if room.state.Dirty() {
			rooms = append(rooms, room)
		}
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		h.saveRoom(ctx, room)
	}
}

func (h *Hub) saveRoom(ctx context.Context, room *Room) {
	if !room.state.Dirty() {
		return
	}

	doc, err := room.state.Snapshot()
	if err != nil {
		slog.Error("snapshot scene", "diagram", room.diagramID, "error", err)
		return
	}

	if err := h.saveDoc(ctx, room.diagramID, doc); err != nil {
		slog.Error("save scene snapshot", "diagram", room.diagramID, "error", err)
		return
	}

	slog.Info("scene snapshot saved", "diagram", room.diagramID)
}

func errorMessage(reason string) *Message {
	payload, _ := json.Marshal(map[string]string{"error": reason})
	return &Message{Type: TypeError, Payload: payload}
}
