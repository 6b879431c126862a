package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkSpeakingIsExclusive(t *testing.T) {
	registry := NewRegistry(DefaultRoster())

	seat, known := registry.MarkSpeaking("Socrates")
	require.True(t, known)
	assert.Equal(t, "socrates", seat.ID)
	assert.Equal(t, Speaking, registry.Activity("socrates"))

	seat, known = registry.MarkSpeaking("Anton Chekhov")
	require.True(t, known)
	assert.Equal(t, "chekhov", seat.ID)

	speaking := 0
	for id, state := range registry.Snapshot() {
		if state == Speaking {
			speaking++
			assert.Equal(t, "chekhov", id)
		}
	}
	assert.Equal(t, 1, speaking, "at most one seat may be Speaking")
}

func TestMarkSpeakingUnknownNameIdlesEveryone(t *testing.T) {
	registry := NewRegistry(DefaultRoster())
	registry.SetActivity("socrates", Speaking)

	_, known := registry.MarkSpeaking("Diogenes")

	assert.False(t, known)
	for _, state := range registry.Snapshot() {
		assert.Equal(t, Idle, state)
	}
}

func TestSetActivityIgnoresUnknownID(t *testing.T) {
	registry := NewRegistry(DefaultRoster())
	registry.SetActivity("diogenes", Speaking)
	assert.Equal(t, Idle, registry.Activity("diogenes"))
	assert.Len(t, registry.Snapshot(), DefaultRoster().Size())
}

func TestResetAll(t *testing.T) {
	registry := NewRegistry(DefaultRoster())
	registry.SetActivity("kafka", Speaking)
	registry.ResetAll()
	for _, state := range registry.Snapshot() {
		assert.Equal(t, Idle, state)
	}
}
