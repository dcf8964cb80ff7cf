package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Entry is one waiting player.
type Entry struct {
	ConnID     uuid.UUID
	ExternalID *int64
	Name       string
	QueuedAt   time.Time
}

// Pair is the two longest-waiting players, popped together.
type Pair struct {
	First  Entry
	Second Entry
}

// Manager is a strict FIFO matchmaking queue: no skill pairing, the two
// oldest entries match the moment the queue holds two.
type Manager struct {
	mu      sync.Mutex
	waiting []Entry
	logger  zerolog.Logger
}

func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger: logger.With().Str("component", "matchmaking_queue").Logger(),
	}
}

// Join appends the requester, replacing any stale entry for the same
// connection, and pops the two oldest entries as a pair when possible.
// The returned size is the queue depth after the mutation.
func (m *Manager) Join(e Entry) (*Pair, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(e.ConnID)
	if e.QueuedAt.IsZero() {
		e.QueuedAt = time.Now()
	}
	m.waiting = append(m.waiting, e)

	m.logger.Info().
		Str("conn_id", e.ConnID.String()).
		Str("name", e.Name).
		Int("queue_size", len(m.waiting)).
		Msg("player enqueued")

	if len(m.waiting) < 2 {
		return nil, len(m.waiting)
	}

	pair := &Pair{First: m.waiting[0], Second: m.waiting[1]}
	m.waiting = append(m.waiting[:0:0], m.waiting[2:]...)
	return pair, len(m.waiting)
}

// Leave removes a waiting entry; a no-op for connections that were never
// queued or already paired.
func (m *Manager) Leave(connID uuid.UUID) (bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeLocked(connID)
	if removed {
		m.logger.Info().Str("conn_id", connID.String()).Msg("player dequeued")
	}
	return removed, len(m.waiting)
}

// Size returns the current queue depth.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiting)
}

func (m *Manager) removeLocked(connID uuid.UUID) bool {
	for i, e := range m.waiting {
		if e.ConnID == connID {
			m.waiting = append(m.waiting[:i], m.waiting[i+1:]...)
			return true
		}
	}
	return false
}
