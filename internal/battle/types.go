package battle

import (
	"time"

	"github.com/google/uuid"

	"github.com/opquiz/meteor-crash/internal/question"
)

// Side identifies one of the two fixed player slots in a room.
type Side int8

const (
	SideA Side = iota
	SideB
)

// Opponent returns the other slot.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// Phase is the room lifecycle state. There is no paused state.
type Phase int8

const (
	PhasePlaying Phase = iota
	PhaseEnded
)

func (p Phase) String() string {
	if p == PhaseEnded {
		return "ended"
	}
	return "playing"
}

// Fixed gameplay constants. These are deliberately not configurable;
// matches are meant to feel identical across deployments.
const (
	// MeteorCount is the fixed number of in-flight meteors per room.
	// Meteors are never created or destroyed mid-match, only retargeted.
	MeteorCount = 3

	// DefaultTickInterval drives the simulation loop.
	DefaultTickInterval = time.Second

	// FirstTargetHP is the time budget for the slot that receives the
	// opening volley; it is longer to compensate for early pressure.
	FirstTargetHP  = 420 * time.Second
	SecondTargetHP = 390 * time.Second

	// OpeningTravel is the countdown on the three seeded meteors,
	// longer than steady state to give both players breathing room.
	OpeningTravel = 45 * time.Second

	// CenterTravel is the reload countdown after a direct hit.
	CenterTravel = 30 * time.Second

	// ShipToShipTravel is the full return-trip total; a returned meteor
	// gets ShipToShipTravel minus whatever the answerer already consumed.
	ShipToShipTravel = 60 * time.Second

	// MinReturnTravel floors the recomputed countdown on a return.
	MinReturnTravel = time.Second

	// DirectHitPenalty is subtracted from a slot's HP when a meteor lands.
	DirectHitPenalty = 30 * time.Second

	// AnswerCooldown blunts accidental double-fires per connection.
	AnswerCooldown = time.Second
)

// Player is one slot's state. HP is the remaining time budget; reaching
// zero loses the match.
type Player struct {
	Name       string
	ExternalID *int64
	HP         time.Duration
	MaxHP      time.Duration
}

// Meteor is an in-flight quiz projectile. Remaining counts down in real
// time; Limit is the countdown's original total for the current leg.
type Meteor struct {
	ID        uuid.UUID
	Target    Side
	Remaining time.Duration
	Limit     time.Duration
	Question  question.Question
}

// Identity is what a connection brings to the table: a display name and an
// optional stable account id. Authentication happens upstream.
type Identity struct {
	ConnID     uuid.UUID
	Name       string
	ExternalID *int64
}
