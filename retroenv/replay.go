package retroenv

import (
	"errors"
	"fmt"

	"github.com/valerio/go-retroenv/retroenv/bit"
	"github.com/valerio/go-retroenv/retroenv/movie"
	"github.com/valerio/go-retroenv/retroenv/space"
)

// ReplayMovie reconstructs a recorded episode by driving a core with the
// movie's inputs, starting from the embedded state snapshot. Frame 0 holds
// the starting button state and executes no emulator frame, so a movie
// recorded over N steps replays as exactly N frame advances. The observe
// callback, when not nil, receives each replayed step's StepResult; a
// non-nil error from it aborts the replay.
//
// The core must match the movie's button layout and player count: a movie
// is bound to one game.
func ReplayMovie(core Core, rep *movie.Replayer, obsKind Observations, observe func(StepResult) error) error {
	if rep.Players() != core.Players() {
		return fmt.Errorf("replay: movie has %d players, core has %d", rep.Players(), core.Players())
	}
	if rep.Buttons() != len(core.Buttons()) {
		return fmt.Errorf("replay: movie has %d buttons, core has %d", rep.Buttons(), len(core.Buttons()))
	}

	if state := rep.State(); len(state) > 0 {
		if err := core.LoadState(state); err != nil {
			return fmt.Errorf("replay: loading embedded state: %w", err)
		}
	}

	first := true
	for {
		if err := rep.Step(); err != nil {
			if errors.Is(err, movie.ErrReplayExhausted) {
				return nil
			}
			return err
		}

		for p := 0; p < rep.Players(); p++ {
			var mask space.EncodedAction
			for b := 0; b < rep.Buttons(); b++ {
				pressed, err := rep.GetKey(b, p)
				if err != nil {
					return err
				}
				if pressed {
					mask = space.EncodedAction(bit.Set16(uint8(b), uint16(mask)))
				}
			}
			core.SetButtonMask(p, mask)
		}

		// Frame 0 was committed at reset time without advancing the
		// core, so replay only applies its masks.
		if first {
			first = false
			continue
		}

		if err := core.AdvanceFrame(); err != nil {
			return fmt.Errorf("replay: advancing frame: %w", err)
		}

		if observe != nil {
			rewards := make([]float64, core.Players())
			for p := range rewards {
				rewards[p] = core.Reward(p)
			}
			res := StepResult{
				Obs:     observeCore(core, obsKind),
				Rewards: rewards,
				Done:    core.Done(),
			}
			if err := observe(res); err != nil {
				return err
			}
		}
	}
}
