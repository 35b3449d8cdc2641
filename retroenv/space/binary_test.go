package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-retroenv/retroenv/bit"
	"github.com/valerio/go-retroenv/retroenv/rng"
)

// Game Boy style layout with one unbound slot.
var gbLayout = ButtonLayout{"B", "", "SELECT", "START", "UP", "DOWN", "LEFT", "RIGHT", "A"}

func TestFullEncodeIdentity(t *testing.T) {
	layout := ButtonLayout{"Z", "", "TAB", "ENTER", "UP", "DOWN", "LEFT", "RIGHT"}
	full, err := NewFull(layout, 1)
	require.NoError(t, err)

	mask, err := full.Encode([]int{1, 0, 0, 0, 0, 1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(33), mask, "bits 0 and 5 should be set")
}

func TestFullEncodePlayerSlicing(t *testing.T) {
	full, err := NewFull(ButtonLayout{"A", "B"}, 2)
	require.NoError(t, err)

	// Player 0 presses A, player 1 presses B.
	value := []int{1, 0, 0, 1}

	mask0, err := full.Encode(value, 0)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0b01), mask0)

	mask1, err := full.Encode(value, 1)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0b10), mask1)
}

func TestFullEncodeRoundTrip(t *testing.T) {
	full, err := NewFull(gbLayout, 1)
	require.NoError(t, err)

	src := rng.New(1)
	for i := 0; i < 100; i++ {
		value := full.Sample(src)
		mask, err := full.Encode(value, 0)
		require.NoError(t, err)

		// Decompose back into a vector and re-encode: must be idempotent.
		decomposed := make([]int, len(gbLayout))
		for b := range decomposed {
			if bit.IsSet16(uint8(b), uint16(mask)) {
				decomposed[b] = 1
			}
		}
		assert.Equal(t, value, decomposed)

		again, err := full.Encode(decomposed, 0)
		require.NoError(t, err)
		assert.Equal(t, mask, again)
	}
}

func TestFullEncodeErrors(t *testing.T) {
	full, err := NewFull(ButtonLayout{"A", "B"}, 1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		value  []int
		player int
	}{
		{"wrong length", []int{1}, 0},
		{"non-binary element", []int{2, 0}, 0},
		{"negative element", []int{-1, 0}, 0},
		{"player out of range", []int{0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := full.Encode(tt.value, tt.player)
			var encErr *EncodingError
			assert.ErrorAs(t, err, &encErr)
		})
	}
}

func TestFullLayoutValidation(t *testing.T) {
	_, err := NewFull(ButtonLayout{}, 1)
	assert.Error(t, err)

	tooWide := make(ButtonLayout, MaxButtons+1)
	_, err = NewFull(tooWide, 1)
	assert.Error(t, err)
}

// dropConflicts clears mutually exclusive d-pad directions on gbLayout.
func dropConflicts(mask EncodedAction) EncodedAction {
	const up, down, left, right = 4, 5, 6, 7
	if bit.IsSet16(up, uint16(mask)) && bit.IsSet16(down, uint16(mask)) {
		mask = EncodedAction(bit.Reset16(up, bit.Reset16(down, uint16(mask))))
	}
	if bit.IsSet16(left, uint16(mask)) && bit.IsSet16(right, uint16(mask)) {
		mask = EncodedAction(bit.Reset16(left, bit.Reset16(right, uint16(mask))))
	}
	return mask
}

func TestFilteredAppliesFilter(t *testing.T) {
	filtered, err := NewFiltered(gbLayout, 1, dropConflicts)
	require.NoError(t, err)

	// UP and DOWN together are illegal and must be dropped.
	value := []int{0, 0, 0, 0, 1, 1, 0, 0, 0}
	mask, err := filtered.Encode(value, 0)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0), mask)
}

func TestFilteredIdempotentOnLegalMasks(t *testing.T) {
	filtered, err := NewFiltered(gbLayout, 1, dropConflicts)
	require.NoError(t, err)

	src := rng.New(5)
	for i := 0; i < 200; i++ {
		value := filtered.Sample(src)
		mask, err := filtered.Encode(value, 0)
		require.NoError(t, err)

		// Filtering an already legal mask returns it unchanged.
		assert.Equal(t, mask, dropConflicts(mask))
	}
}

func TestSampleDeterministicGivenSeed(t *testing.T) {
	full, err := NewFull(gbLayout, 2)
	require.NoError(t, err)

	a := rng.New(77)
	b := rng.New(77)
	for i := 0; i < 50; i++ {
		assert.Equal(t, full.Sample(a), full.Sample(b))
	}
}

func TestFullSpecBounds(t *testing.T) {
	full, err := NewFull(gbLayout, 2)
	require.NoError(t, err)

	spec := full.Spec()
	assert.Equal(t, len(gbLayout)*2, spec.Len())
	for i := 0; i < spec.Len(); i++ {
		assert.Equal(t, 0.0, spec.Lower.AtVec(i))
		assert.Equal(t, 1.0, spec.Upper.AtVec(i))
	}
}
