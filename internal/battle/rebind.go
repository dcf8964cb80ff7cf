package battle

import (
	"github.com/google/uuid"

	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// resolveSide decides which slot an identity belongs to. External id wins
// over display name; names are compared normalized. Pure so the rebind
// policy is testable without a live connection.
func resolveSide(players [2]*Player, externalID *int64, name string) (Side, bool) {
	if externalID != nil {
		for _, side := range []Side{SideA, SideB} {
			if pid := players[side].ExternalID; pid != nil && *pid == *externalID {
				return side, true
			}
		}
	}
	if normalized := normalizeAnswer(name); normalized != "" {
		for _, side := range []Side{SideA, SideB} {
			if normalizeAnswer(players[side].Name) == normalized {
				return side, true
			}
		}
	}
	return SideA, false
}

// Bind attaches a connection to the slot its identity resolves to and
// pushes a fresh state snapshot to everyone in the room. Any connection
// previously bound to that slot is evicted: last writer wins, which is
// what makes a page refresh work. An unresolvable identity is a no-op.
func (r *Room) Bind(connID uuid.UUID, externalID *int64, name string) bool {
	r.mu.Lock()

	if _, already := r.conns[connID]; already {
		msgs := r.snapshotLocked(ws.TypeRoomState, "")
		r.mu.Unlock()
		r.deliver(msgs)
		return true
	}

	side, ok := resolveSide(r.players, externalID, name)
	if !ok {
		r.mu.Unlock()
		return false
	}

	for existing, s := range r.conns {
		if s == side {
			delete(r.conns, existing)
			delete(r.lastAnswer, existing)
		}
	}
	r.conns[connID] = side

	r.logger.Info().
		Str("conn_id", connID.String()).
		Str("side", side.String()).
		Msg("connection bound to slot")

	msgType := ws.TypeRoomState
	if r.phase == PhaseEnded {
		msgType = ws.TypeRoomEnded
	}
	msgs := r.snapshotLocked(msgType, "")
	r.mu.Unlock()
	r.deliver(msgs)
	return true
}
