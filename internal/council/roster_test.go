package council

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRosterHasFiveSeats(t *testing.T) {
	roster := DefaultRoster()
	assert.Equal(t, 5, roster.Size())

	seat, ok := roster.ByID("nietzsche")
	require.True(t, ok)
	assert.Equal(t, "Friedrich Nietzsche", seat.Name)

	seat, ok = roster.ByName("Anton Chekhov")
	require.True(t, ok)
	assert.Equal(t, "chekhov", seat.ID)

	_, ok = roster.ByName("Diogenes")
	assert.False(t, ok)
}

func writeRosterFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRoster(t *testing.T) {
	path := writeRosterFile(t, `
philosophers:
  - id: hypatia
    name: Hypatia
    initials: HY
  - id: laozi
    name: Laozi
    initials: LZ
`)
	roster, err := LoadRoster(path)
	require.NoError(t, err)
	assert.Equal(t, 2, roster.Size())
	seat, ok := roster.ByID("hypatia")
	require.True(t, ok)
	assert.Equal(t, "Hypatia", seat.Name)
}

func TestLoadRosterRejectsDuplicates(t *testing.T) {
	path := writeRosterFile(t, `
philosophers:
  - {id: a, name: A}
  - {id: a, name: A again}
`)
	_, err := LoadRoster(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadRosterRejectsEmpty(t *testing.T) {
	path := writeRosterFile(t, "philosophers: []\n")
	_, err := LoadRoster(path)
	require.Error(t, err)
}

func TestLoadRosterMissingFile(t *testing.T) {
	_, err := LoadRoster(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
