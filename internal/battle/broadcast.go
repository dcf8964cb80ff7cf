package battle

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

type outbound struct {
	connID uuid.UUID
	msg    ws.Message
}

// snapshotLocked builds one state message per bound connection. Every
// recipient gets the identical payload except for YouSide. Answer fields
// stay server-side; the question text of every meteor is visible to both
// players so they can watch the whole board. Callers hold r.mu.
func (r *Room) snapshotLocked(msgType, message string) []outbound {
	base := ws.RoomStatePayload{
		Phase:   r.phase.String(),
		RoomID:  r.ID.String(),
		MaxHPMs: FirstTargetHP.Milliseconds(),
		Players: ws.PlayersState{
			A: playerState(r.player(SideA)),
			B: playerState(r.player(SideB)),
		},
		Meteors: make([]ws.MeteorState, 0, len(r.meteors)),
		Message: message,
	}
	if r.winner != nil {
		w := r.winner.String()
		base.WinnerSide = &w
	}
	for _, m := range r.meteors {
		base.Meteors = append(base.Meteors, ws.MeteorState{
			ID:          m.ID.String(),
			Target:      m.Target.String(),
			RemainingMs: m.Remaining.Milliseconds(),
			LimitMs:     m.Limit.Milliseconds(),
			Text:        m.Question.Text,
		})
	}

	msgs := make([]outbound, 0, len(r.conns))
	for connID, side := range r.conns {
		payload := base
		payload.YouSide = side.String()
		raw, err := json.Marshal(payload)
		if err != nil {
			r.logger.Error().Err(err).Msg("marshal room state")
			continue
		}
		msgs = append(msgs, outbound{
			connID: connID,
			msg:    ws.Message{Type: msgType, Payload: raw},
		})
	}
	return msgs
}

// BroadcastState pushes the current snapshot to every bound connection,
// optionally with a human-readable message.
func (r *Room) BroadcastState(message string) {
	r.mu.Lock()
	msgs := r.snapshotLocked(ws.TypeRoomState, message)
	r.mu.Unlock()
	r.deliver(msgs)
}

func playerState(p *Player) ws.PlayerState {
	return ws.PlayerState{
		Name:    p.Name,
		HPMs:    p.HP.Milliseconds(),
		MaxHPMs: p.MaxHP.Milliseconds(),
	}
}
