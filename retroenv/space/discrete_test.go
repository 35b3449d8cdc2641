package space

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-retroenv/retroenv/rng"
)

// Three groups sized 3, 3 and 2 (18 combos). Masks are disjoint so a
// combined mask uniquely identifies the combo selection.
var testCombos = [][]EncodedAction{
	{0, 0b0001, 0b0010},  // d-pad horizontal: none, LEFT, RIGHT
	{0, 0b0100, 0b1000},  // d-pad vertical: none, UP, DOWN
	{0b000000, 0b010000}, // buttons: none, A
}

func TestDiscreteDomainSize(t *testing.T) {
	d, err := NewDiscrete(testCombos, 1)
	require.NoError(t, err)
	assert.Equal(t, 18, d.N())

	d2, err := NewDiscrete(testCombos, 2)
	require.NoError(t, err)
	assert.Equal(t, 18*18, d2.N())
}

func TestDiscreteEndpoints(t *testing.T) {
	d, err := NewDiscrete(testCombos, 1)
	require.NoError(t, err)

	// Index 0 selects the first combo of every group.
	mask, err := d.Encode([]int{0}, 0)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0), mask)

	// Index 17 selects the last combo of every group.
	mask, err = d.Encode([]int{17}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][2]|testCombos[1][2]|testCombos[2][1], mask)

	// Index 18 is out of domain and must fail, not clamp.
	_, err = d.Encode([]int{18}, 0)
	var encErr *EncodingError
	assert.ErrorAs(t, err, &encErr)
}

func TestDiscreteMixedRadixOrder(t *testing.T) {
	d, err := NewDiscrete(testCombos, 1)
	require.NoError(t, err)

	// The first group is the least significant digit: index 1 selects the
	// second combo of group 0 and the first of the others.
	mask, err := d.Encode([]int{1}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][1], mask)

	// Index 3 rolls over into group 1.
	mask, err = d.Encode([]int{3}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[1][1], mask)

	// Index 9 rolls over into group 2.
	mask, err = d.Encode([]int{9}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[2][1], mask)
}

func TestDiscreteBijection(t *testing.T) {
	d, err := NewDiscrete(testCombos, 1)
	require.NoError(t, err)

	// Masks are disjoint across groups so every index must produce a
	// distinct mask: the encoding enumerates every combination once.
	seen := make(map[EncodedAction]int)
	for i := 0; i < d.N(); i++ {
		mask, err := d.Encode([]int{i}, 0)
		require.NoError(t, err)
		prev, dup := seen[mask]
		assert.False(t, dup, "index %d collides with index %d on mask %04b", i, prev, mask)
		seen[mask] = i
	}
	assert.Len(t, seen, 18)
}

func TestDiscreteMultiplayerDigits(t *testing.T) {
	d, err := NewDiscrete(testCombos, 2)
	require.NoError(t, err)

	// Index 1 is player 0's digit only: player 1 decodes to all-none.
	mask0, err := d.Encode([]int{1}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][1], mask0)

	mask1, err := d.Encode([]int{1}, 1)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0), mask1)

	// Index 18 is player 1's digit only.
	mask0, err = d.Encode([]int{18}, 0)
	require.NoError(t, err)
	assert.Equal(t, EncodedAction(0), mask0)

	mask1, err = d.Encode([]int{18}, 1)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][1], mask1)
}

func TestDiscreteSampleInDomain(t *testing.T) {
	d, err := NewDiscrete(testCombos, 1)
	require.NoError(t, err)

	src := rng.New(3)
	for i := 0; i < 500; i++ {
		value := d.Sample(src)
		require.Len(t, value, 1)
		assert.GreaterOrEqual(t, value[0], 0)
		assert.Less(t, value[0], 18)
	}
}

func TestMultiDiscreteEncode(t *testing.T) {
	m, err := NewMultiDiscrete(testCombos, 1)
	require.NoError(t, err)

	mask, err := m.Encode([]int{2, 1, 1}, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][2]|testCombos[1][1]|testCombos[2][1], mask)
}

func TestMultiDiscretePlayerBlocks(t *testing.T) {
	m, err := NewMultiDiscrete(testCombos, 2)
	require.NoError(t, err)

	value := []int{1, 0, 0 /* player 0 */, 0, 2, 1 /* player 1 */}

	mask0, err := m.Encode(value, 0)
	require.NoError(t, err)
	assert.Equal(t, testCombos[0][1], mask0)

	mask1, err := m.Encode(value, 1)
	require.NoError(t, err)
	assert.Equal(t, testCombos[1][2]|testCombos[2][1], mask1)
}

func TestMultiDiscreteErrors(t *testing.T) {
	m, err := NewMultiDiscrete(testCombos, 1)
	require.NoError(t, err)

	tests := []struct {
		name  string
		value []int
	}{
		{"wrong length", []int{0, 0}},
		{"index past group size", []int{3, 0, 0}},
		{"negative index", []int{0, -1, 0}},
		{"last group overflow", []int{0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Encode(tt.value, 0)
			var encErr *EncodingError
			assert.ErrorAs(t, err, &encErr)
		})
	}
}

func TestMultiDiscreteSpecBounds(t *testing.T) {
	m, err := NewMultiDiscrete(testCombos, 2)
	require.NoError(t, err)

	spec := m.Spec()
	require.Equal(t, 6, spec.Len())
	// Per-group upper bounds repeat for each player block.
	for p := 0; p < 2; p++ {
		assert.Equal(t, 2.0, spec.Upper.AtVec(3*p+0))
		assert.Equal(t, 2.0, spec.Upper.AtVec(3*p+1))
		assert.Equal(t, 1.0, spec.Upper.AtVec(3*p+2))
	}
}

func TestEmptyComboTablesRejected(t *testing.T) {
	_, err := NewDiscrete(nil, 1)
	assert.Error(t, err)

	_, err = NewMultiDiscrete([][]EncodedAction{{0}, {}}, 1)
	assert.Error(t, err)
}
