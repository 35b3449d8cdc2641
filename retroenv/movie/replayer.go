package movie

import (
	"fmt"
	"io"
	"os"

	"github.com/valerio/go-retroenv/retroenv/bit"
)

// Replayer reads a recorded movie frame by frame. It is read-only: the
// cursor starts before the first frame, Step advances it, and stepping past
// the last frame returns ErrReplayExhausted.
type Replayer struct {
	header header
	state  []byte
	frames [][]byte
	cursor int
}

// OpenReplayer parses a movie file fully into memory and returns a replayer
// positioned before frame 0.
func OpenReplayer(path string) (*Replayer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("movie: opening %s: %w", path, err)
	}
	defer f.Close()

	h, state, err := readHeader(f)
	if err != nil {
		return nil, err
	}

	size := h.frameSize()
	var frames [][]byte
	for {
		frame := make([]byte, size)
		_, err := io.ReadFull(f, frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("movie: reading frame %d: %w", len(frames), err)
		}
		frames = append(frames, frame)
	}

	return &Replayer{header: h, state: state, frames: frames, cursor: -1}, nil
}

// GameName returns the game the movie was recorded against.
func (r *Replayer) GameName() string {
	return r.header.gameName
}

// Players returns the player count recorded in the header.
func (r *Replayer) Players() int {
	return r.header.players
}

// Buttons returns the per-player button count recorded in the header.
func (r *Replayer) Buttons() int {
	return r.header.buttons
}

// State returns the embedded emulator state snapshot captured when the
// movie was created. Loading it reconstructs the exact starting conditions.
func (r *Replayer) State() []byte {
	return append([]byte(nil), r.state...)
}

// Frames returns the total number of recorded frames.
func (r *Replayer) Frames() int {
	return len(r.frames)
}

// Step advances the cursor to the next frame.
func (r *Replayer) Step() error {
	if r.cursor+1 >= len(r.frames) {
		return ErrReplayExhausted
	}
	r.cursor++
	return nil
}

// GetKey reads one button's state from the current frame. It is only valid
// after a successful Step.
func (r *Replayer) GetKey(button, player int) (bool, error) {
	if r.cursor < 0 {
		return false, fmt.Errorf("movie: no current frame, call Step first")
	}
	idx, err := keyBit(r.header, button, player)
	if err != nil {
		return false, err
	}
	frame := r.frames[r.cursor]
	return bit.IsSet(uint8(idx%8), frame[idx/8]), nil
}
