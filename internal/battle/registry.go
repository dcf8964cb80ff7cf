package battle

import (
	"sync"

	"github.com/google/uuid"
)

// Registry owns the process-wide room table. Constructed once at startup
// and injected wherever rooms need resolving; no package-level state.
type Registry struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[uuid.UUID]*Room)}
}

func (g *Registry) Add(r *Room) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rooms[r.ID] = r
}

func (g *Registry) Get(id uuid.UUID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	r, ok := g.rooms[id]
	return r, ok
}

// Remove exists so an eviction policy for ended rooms can hook in; nothing
// calls it automatically today.
func (g *Registry) Remove(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, id)
}

func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Rooms returns a snapshot of all registered rooms.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}
