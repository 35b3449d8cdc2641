// Package metadata parses the per-game sidecar description that names
// default starting states.
package metadata

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Game holds the starting-state defaults for one game. DefaultPlayers is
// indexed by player count minus one and overrides Default when an entry for
// that player count is present and non-empty.
type Game struct {
	Default        string   `yaml:"default_state"`
	DefaultPlayers []string `yaml:"default_player_states"`
}

// Load parses a sidecar description.
func Load(r io.Reader) (*Game, error) {
	var g Game
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("metadata: decoding sidecar: %w", err)
	}
	return &g, nil
}

// LoadFile parses the sidecar description at path.
func LoadFile(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: opening %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// DefaultState resolves the default starting-state name for a player count.
// The second return is false when the game declares no usable default.
func (g *Game) DefaultState(players int) (string, bool) {
	if players >= 1 && players <= len(g.DefaultPlayers) && g.DefaultPlayers[players-1] != "" {
		return g.DefaultPlayers[players-1], true
	}
	if g.Default != "" {
		return g.Default, true
	}
	return "", false
}
