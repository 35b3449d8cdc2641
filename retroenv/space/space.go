// Package space implements the action encodings that turn structured action
// values into per-player button bitmasks.
//
// A button layout is an ordered list of physical button names, some slots
// possibly unbound. Encoding always works by position in that list; names
// exist only for humans. Every space variant exposes its valid value domain
// through a Spec, samples uniformly from it, and encodes a value into one
// player's bitmask. Encode is pure: it never touches the emulator, the
// random source, or any other state.
package space

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MaxButtons bounds the width of an encoded action bitmask.
const MaxButtons = 16

// EncodedAction is a per-player button bitmask, bit i set when button i is
// pressed this frame.
type EncodedAction uint16

// ButtonLayout is the ordered list of physical buttons for a core+game.
// An empty string marks an unbound slot; the slot still occupies a bit.
type ButtonLayout []string

// Validate checks that the layout fits in an EncodedAction.
func (l ButtonLayout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("button layout is empty")
	}
	if len(l) > MaxButtons {
		return fmt.Errorf("button layout has %d slots, max is %d", len(l), MaxButtons)
	}
	return nil
}

// FilterFunc maps a raw bitmask to the nearest legal one per game rules,
// e.g. dropping mutually exclusive d-pad directions.
type FilterFunc func(EncodedAction) EncodedAction

// Space is one action encoding over a button layout.
type Space interface {
	// Spec returns the shape and inclusive bounds of valid action values.
	Spec() Spec
	// Sample draws a uniformly random valid action value.
	Sample(src Sampler) []int
	// Encode maps an action value to one player's button bitmask.
	// Out-of-domain values fail, they are never clamped.
	Encode(value []int, player int) (EncodedAction, error)
}

// Sampler is the subset of rng.Source that spaces consume.
type Sampler interface {
	Intn(n int) int
	Bit() int
}

// Spec describes the external shape of valid action values: one entry per
// vector element, with inclusive lower and upper bounds.
type Spec struct {
	Lower mat.Vector
	Upper mat.Vector
}

// Len returns the action value length the spec describes.
func (s Spec) Len() int {
	return s.Lower.Len()
}

func uniformSpec(n int, lower, upper float64) Spec {
	lo := make([]float64, n)
	hi := make([]float64, n)
	for i := range lo {
		lo[i] = lower
		hi[i] = upper
	}
	return Spec{Lower: mat.NewVecDense(n, lo), Upper: mat.NewVecDense(n, hi)}
}

func uniformSpecFrom(lo, hi []float64) Spec {
	return Spec{Lower: mat.NewVecDense(len(lo), lo), Upper: mat.NewVecDense(len(hi), hi)}
}

// EncodingError reports an action value outside its space's declared domain.
type EncodingError struct {
	Space  string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s action encoding: %s", e.Space, e.Reason)
}

func encodingErrorf(space, format string, args ...any) error {
	return &EncodingError{Space: space, Reason: fmt.Sprintf(format, args...)}
}

func checkPlayer(space string, player, players int) error {
	if player < 0 || player >= players {
		return encodingErrorf(space, "player %d out of range [0, %d)", player, players)
	}
	return nil
}
