package movie

import (
	"bufio"
	"fmt"
	"os"

	"github.com/valerio/go-retroenv/retroenv/bit"
)

// Recorder appends one frame per Step to a movie file. The backing file is
// exclusively owned by the Recorder until Close, which must run on every
// exit path.
//
// The embedded snapshot is written lazily: SetState may be called once,
// before the first Step; the header (with an empty snapshot if none was
// set) is flushed by the first Step or by Close, whichever comes first.
type Recorder struct {
	f      *os.File
	w      *bufio.Writer
	header header

	state      []byte
	headerDone bool
	cur        []byte
	frames     int
	closed     bool
}

// NewRecorder creates a movie file for the given game and layout. The file
// is truncated if it exists.
func NewRecorder(path, gameName string, players, buttons int) (*Recorder, error) {
	h := header{gameName: gameName, players: players, buttons: buttons}
	if err := h.validate(); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("movie: creating %s: %w", path, err)
	}

	return &Recorder{
		f:      f,
		w:      bufio.NewWriter(f),
		header: h,
		cur:    make([]byte, h.frameSize()),
	}, nil
}

// SetState embeds the emulator's raw state snapshot. It must be called at
// most once and before the first committed frame.
func (r *Recorder) SetState(raw []byte) error {
	if r.closed {
		return ErrClosed
	}
	if r.headerDone {
		return fmt.Errorf("movie: state must be set before the first frame")
	}
	if r.state != nil {
		return fmt.Errorf("movie: state already set")
	}
	r.state = append([]byte(nil), raw...)
	return nil
}

// SetKey stages one button's pressed state for the current frame. The value
// is not committed until Step.
func (r *Recorder) SetKey(button, player int, pressed bool) error {
	if r.closed {
		return ErrClosed
	}
	idx, err := keyBit(r.header, button, player)
	if err != nil {
		return err
	}
	if pressed {
		r.cur[idx/8] = bit.Set(uint8(idx%8), r.cur[idx/8])
	} else {
		r.cur[idx/8] = bit.Reset(uint8(idx%8), r.cur[idx/8])
	}
	return nil
}

// Step commits the staged frame and starts a fresh one.
func (r *Recorder) Step() error {
	if r.closed {
		return ErrClosed
	}
	if err := r.flushHeader(); err != nil {
		return err
	}
	if _, err := r.w.Write(r.cur); err != nil {
		return fmt.Errorf("movie: writing frame %d: %w", r.frames, err)
	}
	for i := range r.cur {
		r.cur[i] = 0
	}
	r.frames++
	return nil
}

// Frames returns the number of committed frames.
func (r *Recorder) Frames() int {
	return r.frames
}

// GameName returns the game the movie is bound to.
func (r *Recorder) GameName() string {
	return r.header.gameName
}

// Close flushes and finalizes the movie file. Any staged but uncommitted
// frame is discarded. Close is idempotent.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.flushHeader()
	if ferr := r.w.Flush(); err == nil {
		err = ferr
	}
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (r *Recorder) flushHeader() error {
	if r.headerDone {
		return nil
	}
	if err := writeHeader(r.w, r.header, r.state); err != nil {
		return err
	}
	r.headerDone = true
	return nil
}
