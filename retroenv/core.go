// Package retroenv turns an emulated game core into a reinforcement
// learning environment: a typed action space, deterministic seeded
// sampling, a reset/step episode loop, and recorded movies that replay an
// episode exactly.
package retroenv

import (
	"github.com/valerio/go-retroenv/retroenv/space"
)

// Core is the interface an emulator backend implements. A core executes one
// frame at a time given per-player button masks and exposes its screen,
// memory, reward and finished flag along with raw state snapshots.
//
// A core must be driven by exactly one Environment at a time; there is no
// internal locking.
type Core interface {
	// AdvanceFrame executes one frame with the currently set button masks.
	AdvanceFrame() error
	// Screen returns the current video frame. The buffer shape is fixed
	// for the lifetime of the core.
	Screen() Observation
	// Memory returns the emulated system's memory. The length is fixed
	// for the lifetime of the core.
	Memory() []byte
	// Reward returns the reward accumulated for a player this frame.
	Reward(player int) float64
	// Done reports whether the game considers the episode finished.
	Done() bool
	// SetButtonMask sets one player's buttons for the next frame.
	SetButtonMask(player int, mask space.EncodedAction)
	// Buttons returns the core's button layout, empty slots included.
	Buttons() space.ButtonLayout
	// ButtonCombos returns the per-group legal combination tables, each
	// combination already resolved to a bitmask.
	ButtonCombos() [][]space.EncodedAction
	// Players returns the number of players the loaded game supports.
	Players() int
	// SaveState serializes the core's full raw state.
	SaveState() ([]byte, error)
	// LoadState restores a state produced by SaveState.
	LoadState(data []byte) error
	// FilterAction maps a raw button mask to the nearest legal one.
	FilterAction(mask space.EncodedAction) space.EncodedAction
}

// Observation is a screen or memory buffer with its fixed shape. It is a
// copy: mutating it never affects the core.
type Observation struct {
	Data  []byte
	Shape []int
}

// StepResult is the outcome of one environment step. It is immutable once
// returned.
type StepResult struct {
	Obs     Observation
	Rewards []float64
	Done    bool
	// Info is an extension point for auxiliary per-step data. Nothing in
	// this package populates it.
	Info map[string]any
}

// Actions selects which action encoding an Environment uses.
type Actions int

const (
	// ActionsFiltered is the default: multi-binary input passed through
	// the core's legality filter, so recorded movies only ever contain
	// masks the emulator actually accepted.
	ActionsFiltered Actions = iota
	// ActionsAll is the raw multi-binary space, no filtering.
	ActionsAll
	// ActionsDiscrete is a single index over all legal combos.
	ActionsDiscrete
	// ActionsMultiDiscrete is one combo index per button group per player.
	ActionsMultiDiscrete
)

// Observations selects what Step returns as the observation buffer.
type Observations int

const (
	// ObservationsImage observes the screen.
	ObservationsImage Observations = iota
	// ObservationsRAM observes the emulated memory.
	ObservationsRAM
)
