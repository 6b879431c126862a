package council

import "sync"

// Activity is the volatile display state of one participant. It is never
// persisted and resets on every session switch.
type Activity int

const (
	Idle Activity = iota
	Speaking
)

func (a Activity) String() string {
	if a == Speaking {
		return "speaking"
	}
	return "idle"
}

// Registry tracks the activity state of each roster seat. It is a pure
// presentation signal; the state machine never reads it. Safe for
// concurrent use: an in-flight run writes while the UI renders.
type Registry struct {
	mu       sync.Mutex
	roster   Roster
	activity map[string]Activity
}

// NewRegistry builds a registry with every seat Idle.
func NewRegistry(roster Roster) *Registry {
	activity := make(map[string]Activity, len(roster))
	for _, seat := range roster {
		activity[seat.ID] = Idle
	}
	return &Registry{roster: roster, activity: activity}
}

// Roster returns the fixed seat list.
func (r *Registry) Roster() Roster {
	return r.roster
}

// SetActivity updates one seat's state. Unknown ids are ignored.
func (r *Registry) SetActivity(id string, state Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.activity[id]; ok {
		r.activity[id] = state
	}
}

// Activity returns one seat's state; unknown ids read as Idle.
func (r *Registry) Activity(id string) Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activity[id]
}

// MarkSpeaking flags the seat matching the given display name as the sole
// speaker, idling everyone else. Speakers the roster does not know are
// reported back so the caller can still display the turn.
func (r *Registry) MarkSpeaking(name string) (Philosopher, bool) {
	seat, known := r.roster.ByName(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.activity {
		r.activity[id] = Idle
	}
	if known {
		r.activity[seat.ID] = Speaking
	}
	return seat, known
}

// ResetAll idles every seat. Called on session switch.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.activity {
		r.activity[id] = Idle
	}
}

// Snapshot returns a copy of the activity map for rendering.
func (r *Registry) Snapshot() map[string]Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Activity, len(r.activity))
	for id, state := range r.activity {
		out[id] = state
	}
	return out
}
