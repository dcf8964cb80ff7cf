package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/opquiz/meteor-crash/internal/battle/queue"
	httperrors "github.com/opquiz/meteor-crash/pkg/http/errors"
	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// Handler manages WebSocket connections and routes battle messages.
type Handler struct {
	service  *Service
	queue    *queue.Manager
	registry *Registry
	hub      *ws.Hub
	metrics  *Metrics
	logger   zerolog.Logger
}

// NewHandler creates a battle WebSocket handler.
func NewHandler(service *Service, queueMgr *queue.Manager, registry *Registry, hub *ws.Hub, metrics *Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		queue:    queueMgr,
		registry: registry,
		hub:      hub,
		metrics:  metrics,
		logger:   logger,
	}
}

// HandleConnection processes one WebSocket connection for its lifetime.
func (h *Handler) HandleConnection(conn *websocket.Conn, id Identity) {
	wsConn := ws.NewConnection(conn, h.logger)
	h.hub.Register(id.ConnID, wsConn)

	go wsConn.WritePump()

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(context.Background(), id, msg)
	})

	// Cleanup on disconnect: leave the queue, drop room bindings, close.
	if removed, size := h.queue.Leave(id.ConnID); removed {
		h.broadcastQueueSize(size)
	}
	for _, room := range h.registry.Rooms() {
		room.Unbind(id.ConnID)
	}
	h.hub.Unregister(id.ConnID)
}

func (h *Handler) handleMessage(ctx context.Context, id Identity, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeQueueJoin:
		return h.handleQueueJoin(ctx, id, msg.Payload)
	case ws.TypeQueueLeave:
		return h.handleQueueLeave(ctx, id)
	case ws.TypeRoomJoin:
		return h.handleRoomJoin(ctx, id, msg.Payload)
	case ws.TypeRoomAnswer:
		return h.handleRoomAnswer(ctx, id, msg.Payload)
	default:
		return h.sendError(id.ConnID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

func (h *Handler) handleQueueJoin(ctx context.Context, id Identity, payload json.RawMessage) error {
	var req ws.QueueJoinPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return h.sendError(id.ConnID, httperrors.ErrCodeInvalidPayload, "Invalid queue:join payload")
		}
	}

	// The payload overrides the identity supplied at upgrade time.
	name := req.Name
	if name == "" {
		name = id.Name
	}
	externalID := req.ExternalID
	if externalID == nil {
		externalID = id.ExternalID
	}

	pair, size := h.queue.Join(queue.Entry{
		ConnID:     id.ConnID,
		ExternalID: externalID,
		Name:       name,
		QueuedAt:   time.Now(),
	})
	h.broadcastQueueSize(size)

	if pair == nil {
		return nil
	}

	if _, err := h.service.CreateRoom(ctx, *pair); err != nil {
		// Both players were already notified via room:matched.
		return nil
	}
	return nil
}

func (h *Handler) handleQueueLeave(ctx context.Context, id Identity) error {
	if removed, size := h.queue.Leave(id.ConnID); removed {
		h.broadcastQueueSize(size)
	}
	return nil
}

func (h *Handler) handleRoomJoin(ctx context.Context, id Identity, payload json.RawMessage) error {
	var req ws.RoomJoinPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(id.ConnID, httperrors.ErrCodeInvalidPayload, "Invalid room:join payload")
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return h.sendError(id.ConnID, httperrors.ErrCodeInvalidRoomID, "Invalid room id")
	}

	room, ok := h.registry.Get(roomID)
	if !ok {
		// Unknown room is not an error on the wire: the client shows a
		// neutral state when no personalized snapshot follows.
		return nil
	}

	name := req.Name
	if name == "" {
		name = id.Name
	}
	externalID := req.ExternalID
	if externalID == nil {
		externalID = id.ExternalID
	}

	room.Bind(id.ConnID, externalID, name)
	return nil
}

func (h *Handler) handleRoomAnswer(ctx context.Context, id Identity, payload json.RawMessage) error {
	var req ws.RoomAnswerPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return h.sendError(id.ConnID, httperrors.ErrCodeInvalidPayload, "Invalid room:answer payload")
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return h.sendError(id.ConnID, httperrors.ErrCodeInvalidRoomID, "Invalid room id")
	}

	room, ok := h.registry.Get(roomID)
	if !ok {
		return nil
	}

	room.SubmitAnswer(id.ConnID, req.Text, time.Now())
	return nil
}

// broadcastQueueSize tells every connected client the current queue depth,
// not just the mover; lobbies display it.
func (h *Handler) broadcastQueueSize(size int) {
	h.metrics.QueueDepth(size)

	raw, _ := json.Marshal(ws.QueueUpdatedPayload{Size: size})
	msg := ws.Message{Type: ws.TypeQueueUpdated, Payload: raw}
	if err := h.hub.BroadcastAll(msg); err != nil {
		h.logger.Warn().Err(err).Msg("queue size broadcast failed")
	}
}

func (h *Handler) sendError(connID uuid.UUID, code, message string) error {
	raw, _ := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	return h.hub.SendTo(connID, ws.Message{Type: ws.TypeError, Payload: raw})
}
