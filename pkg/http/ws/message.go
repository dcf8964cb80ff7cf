package ws

import "encoding/json"

// MessageType constants for the battle WebSocket protocol.
const (
	// Client -> Server
	TypeQueueJoin  = "queue:join"
	TypeQueueLeave = "queue:leave"
	TypeRoomJoin   = "room:join"
	TypeRoomAnswer = "room:answer"

	// Server -> Client
	TypeQueueUpdated = "queue:updated"
	TypeRoomMatched  = "room:matched"
	TypeRoomState    = "room:state"
	TypeRoomEnded    = "room:ended"
	TypeError        = "error"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client Messages (incoming)

type QueueJoinPayload struct {
	Name       string `json:"name"`
	ExternalID *int64 `json:"externalId,omitempty"`
}

type QueueLeavePayload struct{}

type RoomJoinPayload struct {
	RoomID     string `json:"roomId"`
	ExternalID *int64 `json:"externalId,omitempty"`
	Name       string `json:"name,omitempty"`
}

type RoomAnswerPayload struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// Server Messages (outgoing)

type QueueUpdatedPayload struct {
	Size int `json:"size"`
}

type RoomMatchedPayload struct {
	RoomID string `json:"roomId"`
	Error  string `json:"error,omitempty"`
}

// RoomStatePayload carries the full room snapshot. The same payload is used
// for room:state and room:ended; only YouSide differs per recipient.
type RoomStatePayload struct {
	Phase      string        `json:"phase"`
	RoomID     string        `json:"roomId"`
	MaxHPMs    int64         `json:"maxHpMs"`
	Players    PlayersState  `json:"players"`
	Meteors    []MeteorState `json:"meteors"`
	YouSide    string        `json:"youSide,omitempty"`
	Message    string        `json:"message,omitempty"`
	WinnerSide *string       `json:"winnerSide"`
}

type PlayersState struct {
	A PlayerState `json:"A"`
	B PlayerState `json:"B"`
}

type PlayerState struct {
	Name    string `json:"name"`
	HPMs    int64  `json:"hpMs"`
	MaxHPMs int64  `json:"maxHpMs"`
}

// MeteorState exposes the public meteor fields. Answer text is withheld;
// both players intentionally see every in-flight question text.
type MeteorState struct {
	ID          string `json:"id"`
	Target      string `json:"target"`
	RemainingMs int64  `json:"remainingMs"`
	LimitMs     int64  `json:"limitMs"`
	Text        string `json:"text"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
