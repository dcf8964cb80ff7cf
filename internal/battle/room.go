package battle

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/opquiz/meteor-crash/internal/question"
	"github.com/opquiz/meteor-crash/pkg/http/ws"
)

// Sender delivers an outbound message to one connection. Implemented by
// *ws.Hub; tests substitute a capturing fake.
type Sender interface {
	SendTo(connID uuid.UUID, msg ws.Message) error
}

// Room holds the authoritative state for one 1v1 match. All mutation goes
// through the room mutex: the tick goroutine and the WS message handlers
// never interleave mid-update.
type Room struct {
	ID uuid.UUID

	mu         sync.Mutex
	phase      Phase
	players    [2]*Player
	meteors    [MeteorCount]*Meteor
	conns      map[uuid.UUID]Side
	lastAnswer map[uuid.UUID]time.Time
	winner     *Side
	batch      []question.Question

	tick    time.Duration
	done    chan struct{}
	rng     *rand.Rand
	sender  Sender
	metrics *Metrics
	logger  zerolog.Logger
}

// RoomConfig bundles room construction inputs.
type RoomConfig struct {
	First   Identity // slot A
	Second  Identity // slot B
	Batch   []question.Question
	Tick    time.Duration
	Rand    *rand.Rand
	Sender  Sender
	Metrics *Metrics
	Logger  zerolog.Logger

	// FirstTarget pins the opening target instead of picking randomly.
	// Nil in production; set by tests that need a known layout.
	FirstTarget *Side
}

// NewRoom builds a room with seeded meteors but does not start the tick
// loop; callers register the room first, then call Start.
func NewRoom(cfg RoomConfig) *Room {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTickInterval
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	r := &Room{
		ID:         uuid.New(),
		phase:      PhasePlaying,
		conns:      make(map[uuid.UUID]Side),
		lastAnswer: make(map[uuid.UUID]time.Time),
		batch:      cfg.Batch,
		tick:       cfg.Tick,
		done:       make(chan struct{}),
		rng:        cfg.Rand,
		sender:     cfg.Sender,
		metrics:    cfg.Metrics,
	}
	r.logger = cfg.Logger.With().Str("room_id", r.ID.String()).Logger()

	// The opening volley lands on a random slot; that slot gets the
	// longer budget to offset the pressure.
	firstTarget := Side(r.rng.Intn(2))
	if cfg.FirstTarget != nil {
		firstTarget = *cfg.FirstTarget
	}

	for side, id := range []Identity{cfg.First, cfg.Second} {
		hp := SecondTargetHP
		if Side(side) == firstTarget {
			hp = FirstTargetHP
		}
		r.players[side] = &Player{
			Name:       id.Name,
			ExternalID: id.ExternalID,
			HP:         hp,
			MaxHP:      hp,
		}
		r.conns[id.ConnID] = Side(side)
	}

	for i := range r.meteors {
		r.meteors[i] = &Meteor{
			ID:        uuid.New(),
			Target:    firstTarget,
			Remaining: OpeningTravel,
			Limit:     OpeningTravel,
			Question:  r.drawQuestion(),
		}
	}

	return r
}

// Start launches the simulation loop goroutine.
func (r *Room) Start() {
	go r.run()
}

func (r *Room) run() {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.handleTick()
		}
	}
}

func (r *Room) handleTick() {
	r.mu.Lock()
	if r.phase != PhasePlaying {
		r.mu.Unlock()
		return
	}

	out := r.advance(r.tick)
	for range out.hits {
		r.metrics.directHit()
	}

	var msgs []outbound
	if out.ended {
		msgs = r.endLocked(out.winner)
	} else {
		msgs = r.snapshotLocked(ws.TypeRoomState, "")
	}
	r.mu.Unlock()

	r.deliver(msgs)
}

// endLocked finalizes the match exactly once: the tick loop is stopped
// before the terminal broadcast is built, so no further tick can fire
// after room:ended. Callers must hold r.mu.
func (r *Room) endLocked(winner *Side) []outbound {
	if r.phase == PhaseEnded {
		return nil
	}

	close(r.done)
	r.phase = PhaseEnded
	r.winner = winner
	r.metrics.battleEnded()

	evt := r.logger.Info()
	if winner != nil {
		evt = evt.Str("winner", winner.String())
	} else {
		evt = evt.Bool("draw", true)
	}
	evt.Msg("battle ended")

	return r.snapshotLocked(ws.TypeRoomEnded, "")
}

// Stop halts the tick loop without a terminal broadcast. Used on shutdown
// and when a room is discarded; a finished room is already stopped.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseEnded {
		return
	}
	close(r.done)
	r.phase = PhaseEnded
}

// Phase returns the current lifecycle state.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Winner reports the winning side once the room has ended; nil means a
// draw (or a still-running match).
func (r *Room) Winner() *Side {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.winner
}

// Unbind drops a connection's slot binding, e.g. on disconnect. The slot
// itself is untouched; a reconnect can rebind later.
func (r *Room) Unbind(connID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connID)
	delete(r.lastAnswer, connID)
}

func (r *Room) player(s Side) *Player {
	return r.players[s]
}

// drawQuestion picks a random question from the room's batch.
func (r *Room) drawQuestion() question.Question {
	return r.batch[r.rng.Intn(len(r.batch))]
}

func (r *Room) deliver(msgs []outbound) {
	for _, out := range msgs {
		if err := r.sender.SendTo(out.connID, out.msg); err != nil {
			r.logger.Warn().Err(err).Str("conn_id", out.connID.String()).Msg("state delivery failed")
		}
	}
}
