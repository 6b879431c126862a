// Package council holds the client-side orchestration core: the fixed
// participant roster, the session cache, the append-only transcript, and
// the turn state machine that drives a debate run against the backend.
package council

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChairmanName is the reserved speaker role for the human operator. The
// Chairman is not a roster seat and carries no activity state.
const ChairmanName = "Chairman"

// Philosopher is one fixed seat at the council table.
type Philosopher struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Initials string `yaml:"initials"`
}

// Roster is the ordered, fixed set of agent identities for a session. It is
// configuration, not backend state: the client knows its seats at startup.
type Roster []Philosopher

// DefaultRoster mirrors the roster the council server ships with.
func DefaultRoster() Roster {
	return Roster{
		{ID: "socrates", Name: "Socrates", Initials: "SO"},
		{ID: "kafka", Name: "Franz Kafka", Initials: "FK"},
		{ID: "dostoevsky", Name: "Fyodor Dostoevsky", Initials: "FD"},
		{ID: "nietzsche", Name: "Friedrich Nietzsche", Initials: "FN"},
		{ID: "chekhov", Name: "Anton Chekhov", Initials: "AC"},
	}
}

type rosterFile struct {
	Philosophers []Philosopher `yaml:"philosophers"`
}

// LoadRoster reads a roster override from a YAML file.
func LoadRoster(path string) (Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster file: %w", err)
	}
	var parsed rosterFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse roster file %s: %w", path, err)
	}
	roster := Roster(parsed.Philosophers)
	if err := roster.validate(); err != nil {
		return nil, fmt.Errorf("invalid roster file %s: %w", path, err)
	}
	return roster, nil
}

func (r Roster) validate() error {
	if len(r) == 0 {
		return fmt.Errorf("no philosophers defined")
	}
	seen := map[string]bool{}
	for i, seat := range r {
		id := strings.TrimSpace(seat.ID)
		if id == "" {
			return fmt.Errorf("seat %d has no id", i)
		}
		if strings.TrimSpace(seat.Name) == "" {
			return fmt.Errorf("seat %q has no name", id)
		}
		if seen[id] {
			return fmt.Errorf("duplicate seat id %q", id)
		}
		seen[id] = true
	}
	return nil
}

// Size is the number of seats, and therefore the fixed per-run turn budget.
func (r Roster) Size() int {
	return len(r)
}

// ByID looks a seat up by its identifier.
func (r Roster) ByID(id string) (Philosopher, bool) {
	for _, seat := range r {
		if seat.ID == id {
			return seat, true
		}
	}
	return Philosopher{}, false
}

// ByName looks a seat up by display name. The backend identifies speakers
// by display name on the wire, so this is the mapping used for activity
// display.
func (r Roster) ByName(name string) (Philosopher, bool) {
	trimmed := strings.TrimSpace(name)
	for _, seat := range r {
		if seat.Name == trimmed {
			return seat, true
		}
	}
	return Philosopher{}, false
}
