// Package movie implements the input+state log that makes episodes
// replayable. A movie holds a header (game name, player count, button
// count), one raw emulator state snapshot captured at creation, and a
// sequence of frames, each a fixed-size bit vector of buttons × players
// key states. Recorder writes movies, Replayer reads them; both share the
// binary layout defined here and must never diverge from it, since files
// are exchanged between runs and hosts.
package movie

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ext is the movie file extension, including the dot.
const Ext = ".rmv"

var (
	// ErrClosed is returned by writes on a finalized movie.
	ErrClosed = errors.New("movie: already closed")
	// ErrReplayExhausted is returned when stepping past the last frame.
	ErrReplayExhausted = errors.New("movie: replay exhausted")
)

var magic = [4]byte{'R', 'M', 'V', '1'}

// header is the fixed metadata at the start of every movie file. All
// multi-byte integers in the container are little-endian.
type header struct {
	gameName string
	players  int
	buttons  int
}

// frameSize returns the byte length of one committed frame.
func (h header) frameSize() int {
	return (h.buttons*h.players + 7) / 8
}

func (h header) validate() error {
	if h.players < 1 || h.players > 255 {
		return fmt.Errorf("movie: player count %d out of range [1, 255]", h.players)
	}
	if h.buttons < 1 || h.buttons > 255 {
		return fmt.Errorf("movie: button count %d out of range [1, 255]", h.buttons)
	}
	if len(h.gameName) > 0xFFFF {
		return fmt.Errorf("movie: game name too long (%d bytes)", len(h.gameName))
	}
	return nil
}

// writeHeader emits the magic, game name and layout counts followed by the
// embedded state blob.
func writeHeader(w io.Writer, h header, state []byte) error {
	if err := h.validate(); err != nil {
		return err
	}
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(h.gameName))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, h.gameName); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(h.players), byte(h.buttons)}); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(state))); err != nil {
		return err
	}
	_, err := w.Write(state)
	return err
}

// readHeader parses the magic, game name, layout counts and state blob.
func readHeader(r io.Reader) (header, []byte, error) {
	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading magic: %w", err)
	}
	if gotMagic != magic {
		return header{}, nil, fmt.Errorf("movie: bad magic %q", gotMagic[:])
	}

	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading name length: %w", err)
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading game name: %w", err)
	}

	var counts [2]byte
	if _, err := io.ReadFull(r, counts[:]); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading layout counts: %w", err)
	}

	var stateLen uint32
	if err := binary.Read(r, binary.LittleEndian, &stateLen); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading state length: %w", err)
	}
	state := make([]byte, stateLen)
	if _, err := io.ReadFull(r, state); err != nil {
		return header{}, nil, fmt.Errorf("movie: reading state blob: %w", err)
	}

	h := header{gameName: string(name), players: int(counts[0]), buttons: int(counts[1])}
	if err := h.validate(); err != nil {
		return header{}, nil, err
	}
	return h, state, nil
}

// keyBit returns the frame bit index for a button of a player.
func keyBit(h header, button, player int) (int, error) {
	if button < 0 || button >= h.buttons {
		return 0, fmt.Errorf("movie: button %d out of range [0, %d)", button, h.buttons)
	}
	if player < 0 || player >= h.players {
		return 0, fmt.Errorf("movie: player %d out of range [0, %d)", player, h.players)
	}
	return player*h.buttons + button, nil
}
