package retroenv

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/valerio/go-retroenv/retroenv/bit"
	"github.com/valerio/go-retroenv/retroenv/space"
)

// LoopbackCore is a fully deterministic in-process core used by tests and
// the CLI demo. It latches the button masks it receives into a small memory
// page, rewards each player by the number of buttons held, and finishes
// after a fixed frame budget. Its save states capture everything, so two
// cores fed the same inputs from the same state produce identical frames.
type LoopbackCore struct {
	players   int
	doneAfter int // 0 means never done
	frame     int
	masks     []space.EncodedAction
	mem       []byte
}

const (
	loopbackScreenW = 64
	loopbackScreenH = 48
	loopbackMemSize = 64
)

// Button indices of the loopback layout.
const (
	LoopbackB      = 0
	LoopbackSelect = 2
	LoopbackStart  = 3
	LoopbackUp     = 4
	LoopbackDown   = 5
	LoopbackLeft   = 6
	LoopbackRight  = 7
	LoopbackA      = 8
)

var loopbackLayout = space.ButtonLayout{"B", "", "SELECT", "START", "UP", "DOWN", "LEFT", "RIGHT", "A"}

var loopbackCombos = [][]space.EncodedAction{
	{0, 1 << LoopbackLeft, 1 << LoopbackRight},
	{0, 1 << LoopbackUp, 1 << LoopbackDown},
	{0, 1 << LoopbackB, 1 << LoopbackA},
}

// NewLoopbackCore creates a loopback core. doneAfter is the frame count at
// which Done turns true; 0 disables episode termination.
func NewLoopbackCore(players, doneAfter int) *LoopbackCore {
	if players < 1 {
		players = 1
	}
	return &LoopbackCore{
		players:   players,
		doneAfter: doneAfter,
		masks:     make([]space.EncodedAction, players),
		mem:       make([]byte, loopbackMemSize),
	}
}

func (c *LoopbackCore) AdvanceFrame() error {
	c.frame++
	c.syncMemory()
	return nil
}

func (c *LoopbackCore) syncMemory() {
	binary.LittleEndian.PutUint32(c.mem[0:4], uint32(c.frame))
	for p, mask := range c.masks {
		offset := 4 + 2*p
		if offset+2 <= len(c.mem) {
			binary.LittleEndian.PutUint16(c.mem[offset:offset+2], uint16(mask))
		}
	}
}

func (c *LoopbackCore) Screen() Observation {
	data := make([]byte, loopbackScreenW*loopbackScreenH)
	seed := byte(c.frame) ^ byte(c.masks[0])
	for y := 0; y < loopbackScreenH; y++ {
		for x := 0; x < loopbackScreenW; x++ {
			data[y*loopbackScreenW+x] = byte(x) ^ byte(y) ^ seed
		}
	}
	return Observation{Data: data, Shape: []int{loopbackScreenH, loopbackScreenW}}
}

func (c *LoopbackCore) Memory() []byte {
	return c.mem
}

func (c *LoopbackCore) Reward(player int) float64 {
	if player < 0 || player >= c.players {
		return 0
	}
	return float64(bits.OnesCount16(uint16(c.masks[player])))
}

func (c *LoopbackCore) Done() bool {
	return c.doneAfter > 0 && c.frame >= c.doneAfter
}

func (c *LoopbackCore) SetButtonMask(player int, mask space.EncodedAction) {
	if player < 0 || player >= c.players {
		return
	}
	c.masks[player] = mask
}

func (c *LoopbackCore) Buttons() space.ButtonLayout {
	return loopbackLayout
}

func (c *LoopbackCore) ButtonCombos() [][]space.EncodedAction {
	return loopbackCombos
}

func (c *LoopbackCore) Players() int {
	return c.players
}

// SaveState serializes frame counter and latched masks; that is the whole
// mutable state, memory is derived from it.
func (c *LoopbackCore) SaveState() ([]byte, error) {
	buf := make([]byte, 8+2*c.players)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.frame))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.players))
	for p, mask := range c.masks {
		binary.LittleEndian.PutUint16(buf[8+2*p:], uint16(mask))
	}
	return buf, nil
}

func (c *LoopbackCore) LoadState(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("loopback: state too short (%d bytes)", len(data))
	}
	players := int(binary.LittleEndian.Uint32(data[4:8]))
	if players != c.players {
		return fmt.Errorf("loopback: state has %d players, core has %d", players, c.players)
	}
	if len(data) != 8+2*players {
		return fmt.Errorf("loopback: state length %d, want %d", len(data), 8+2*players)
	}
	c.frame = int(binary.LittleEndian.Uint32(data[0:4]))
	for p := range c.masks {
		c.masks[p] = space.EncodedAction(binary.LittleEndian.Uint16(data[8+2*p:]))
	}
	c.syncMemory()
	return nil
}

// FilterAction drops mutually exclusive d-pad directions and clears the
// unbound slot.
func (c *LoopbackCore) FilterAction(mask space.EncodedAction) space.EncodedAction {
	m := uint16(mask)
	if bit.IsSet16(LoopbackLeft, m) && bit.IsSet16(LoopbackRight, m) {
		m = bit.Reset16(LoopbackLeft, bit.Reset16(LoopbackRight, m))
	}
	if bit.IsSet16(LoopbackUp, m) && bit.IsSet16(LoopbackDown, m) {
		m = bit.Reset16(LoopbackUp, bit.Reset16(LoopbackDown, m))
	}
	m = bit.Reset16(1, m) // unbound slot
	return space.EncodedAction(m)
}

var _ Core = (*LoopbackCore)(nil)
