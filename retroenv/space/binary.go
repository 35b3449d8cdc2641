package space

import (
	"github.com/valerio/go-retroenv/retroenv/bit"
)

// Full is the raw multi-binary space: a flat 0/1 vector of length
// buttons × players, one element per button per player. No legality
// filtering is applied, so combinations that are impossible on real
// hardware are still encodable.
type Full struct {
	layout  ButtonLayout
	players int
}

// NewFull creates the unfiltered multi-binary space.
func NewFull(layout ButtonLayout, players int) (*Full, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if players < 1 {
		return nil, encodingErrorf("full", "players must be >= 1, got %d", players)
	}
	return &Full{layout: layout, players: players}, nil
}

func (f *Full) Spec() Spec {
	return uniformSpec(len(f.layout)*f.players, 0, 1)
}

func (f *Full) Sample(src Sampler) []int {
	value := make([]int, len(f.layout)*f.players)
	for i := range value {
		value[i] = src.Bit()
	}
	return value
}

// Encode reads the slice [B·player, B·player+B) of the value and maps each
// element to a button bit. The mapping is the identity bit for bit.
func (f *Full) Encode(value []int, player int) (EncodedAction, error) {
	buttons := len(f.layout)
	if len(value) != buttons*f.players {
		return 0, encodingErrorf("full", "value length %d, want %d", len(value), buttons*f.players)
	}
	if err := checkPlayer("full", player, f.players); err != nil {
		return 0, err
	}

	var mask EncodedAction
	for i := 0; i < buttons; i++ {
		switch value[buttons*player+i] {
		case 0:
		case 1:
			mask = EncodedAction(bit.Set16(uint8(i), uint16(mask)))
		default:
			return 0, encodingErrorf("full", "element %d is %d, want 0 or 1", buttons*player+i, value[buttons*player+i])
		}
	}
	return mask, nil
}

// Filtered is the multi-binary space with a legality filter applied after
// the raw bitmask is built. This is the recommended variant: the mask the
// emulator receives (and the movie records) is always a legal one.
type Filtered struct {
	full   *Full
	filter FilterFunc
}

// NewFiltered creates the filtered multi-binary space.
func NewFiltered(layout ButtonLayout, players int, filter FilterFunc) (*Filtered, error) {
	if filter == nil {
		return nil, encodingErrorf("filtered", "filter function is nil")
	}
	full, err := NewFull(layout, players)
	if err != nil {
		return nil, err
	}
	return &Filtered{full: full, filter: filter}, nil
}

func (f *Filtered) Spec() Spec {
	return f.full.Spec()
}

func (f *Filtered) Sample(src Sampler) []int {
	return f.full.Sample(src)
}

func (f *Filtered) Encode(value []int, player int) (EncodedAction, error) {
	mask, err := f.full.Encode(value, player)
	if err != nil {
		return 0, err
	}
	return f.filter(mask), nil
}
