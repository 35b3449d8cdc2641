package retroenv

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/valerio/go-retroenv/retroenv/bit"
	"github.com/valerio/go-retroenv/retroenv/metadata"
	"github.com/valerio/go-retroenv/retroenv/movie"
	"github.com/valerio/go-retroenv/retroenv/rng"
	"github.com/valerio/go-retroenv/retroenv/space"
)

// Config describes how to build an Environment around a core.
type Config struct {
	// Game is the game name, used in movie headers and filenames.
	Game string
	// Actions selects the action encoding.
	Actions Actions
	// Observations selects screen or RAM observations.
	Observations Observations
	// State names an explicit starting state from States. Takes precedence
	// over UseDefaultState.
	State string
	// UseDefaultState resolves the starting state from Metadata. If the
	// metadata names no default, the environment starts from power-on
	// rather than failing.
	UseDefaultState bool
	// Metadata is the game's sidecar description, if one exists.
	Metadata *metadata.Game
	// States maps starting-state names to raw snapshot bytes.
	States map[string][]byte
	// MovieDir, when set, arms movie recording: every Reset starts a new
	// movie file in this directory.
	MovieDir string
	// Seed seeds action sampling. A negative value draws process entropy.
	Seed int64
}

// Environment drives one core through reset/step episodes. It exclusively
// owns the core: concurrent use of the same core from two environments is
// undefined.
type Environment struct {
	core    Core
	space   space.Space
	src     *rng.Source
	obsKind Observations

	game      string
	stateName string // "" when starting from power-on
	stateData []byte

	buttons int
	players int

	movieDir string
	rec      *movie.Recorder
	movieID  int
}

// New builds an Environment and performs the initial Reset. If cfg.MovieDir
// is set the first movie starts recording immediately.
func New(core Core, cfg Config) (*Environment, error) {
	if core == nil {
		return nil, configErrorf("core", "core is nil")
	}
	if cfg.Game == "" {
		return nil, configErrorf("game", "game name is required")
	}

	layout := core.Buttons()
	if err := layout.Validate(); err != nil {
		return nil, configErrorf("core", "invalid button layout: %v", err)
	}
	players := core.Players()

	sp, err := buildSpace(core, cfg.Actions, layout, players)
	if err != nil {
		return nil, err
	}

	var src *rng.Source
	if cfg.Seed < 0 {
		src, err = rng.NewFromEntropy()
		if err != nil {
			return nil, configErrorf("seed", "%v", err)
		}
	} else {
		src = rng.New(uint64(cfg.Seed))
	}

	stateName, stateData, err := resolveState(core, cfg, players)
	if err != nil {
		return nil, err
	}

	e := &Environment{
		core:      core,
		space:     sp,
		src:       src,
		obsKind:   cfg.Observations,
		game:      cfg.Game,
		stateName: stateName,
		stateData: stateData,
		buttons:   len(layout),
		players:   players,
		movieDir:  cfg.MovieDir,
	}

	if _, err := e.Reset(); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func buildSpace(core Core, kind Actions, layout space.ButtonLayout, players int) (space.Space, error) {
	switch kind {
	case ActionsFiltered:
		return space.NewFiltered(layout, players, core.FilterAction)
	case ActionsAll:
		return space.NewFull(layout, players)
	case ActionsDiscrete:
		return space.NewDiscrete(core.ButtonCombos(), players)
	case ActionsMultiDiscrete:
		return space.NewMultiDiscrete(core.ButtonCombos(), players)
	default:
		return nil, configErrorf("actions", "unknown action space kind %d", kind)
	}
}

// resolveState picks the starting-state snapshot. With no state configured
// (or resolvable) the core's power-on state is captured so Reset always has
// a snapshot to return to.
func resolveState(core Core, cfg Config, players int) (string, []byte, error) {
	name := cfg.State
	if name == "" && cfg.UseDefaultState && cfg.Metadata != nil {
		name, _ = cfg.Metadata.DefaultState(players)
	}

	if name != "" {
		data, ok := cfg.States[name]
		if !ok {
			return "", nil, configErrorf("state", "starting state %q not found", name)
		}
		return name, data, nil
	}

	data, err := core.SaveState()
	if err != nil {
		return "", nil, configErrorf("state", "capturing power-on state: %v", err)
	}
	return "", data, nil
}

// Reset restores the starting state and, if recording is armed, rolls over
// to a new movie file. Every recorded movie begins with the emulator's
// starting snapshot and one committed all-zero frame 0.
func (e *Environment) Reset() (Observation, error) {
	if err := e.core.LoadState(e.stateData); err != nil {
		return Observation{}, fmt.Errorf("reset: loading starting state: %w", err)
	}
	for p := 0; p < e.players; p++ {
		e.core.SetButtonMask(p, 0)
	}

	if e.movieDir != "" {
		if err := e.startResetMovie(); err != nil {
			return Observation{}, err
		}
	}
	return observeCore(e.core, e.obsKind), nil
}

func (e *Environment) startResetMovie() error {
	if e.rec != nil {
		if err := e.rec.Close(); err != nil {
			return err
		}
	}

	name := fmt.Sprintf("%s-%s-%06d%s", e.game, e.stateNameOrNone(), e.movieID, movie.Ext)
	path := filepath.Join(e.movieDir, name)
	rec, err := movie.NewRecorder(path, e.game, e.players, e.buttons)
	if err != nil {
		return err
	}

	state, err := e.core.SaveState()
	if err != nil {
		rec.Close()
		return fmt.Errorf("reset: capturing movie snapshot: %w", err)
	}
	if err := rec.SetState(state); err != nil {
		rec.Close()
		return err
	}
	// Frame 0 is always the empty frame, so replays have a well-defined
	// first frame before any action is applied.
	if err := rec.Step(); err != nil {
		rec.Close()
		return err
	}

	e.rec = rec
	e.movieID++
	slog.Debug("movie started", "path", path, "game", e.game, "players", e.players)
	return nil
}

func (e *Environment) stateNameOrNone() string {
	if e.stateName == "" {
		return "none"
	}
	return e.stateName
}

// Step encodes the action for every player, records the applied keys if a
// movie is active, advances the core one frame and returns the outcome.
// When Done turns true the step still returns that frame's observation and
// rewards; the caller decides when to Reset.
func (e *Environment) Step(action []int) (StepResult, error) {
	// Encode for all players before touching the core or the movie, so an
	// out-of-domain action mutates nothing.
	masks := make([]space.EncodedAction, e.players)
	for p := 0; p < e.players; p++ {
		mask, err := e.space.Encode(action, p)
		if err != nil {
			return StepResult{}, err
		}
		masks[p] = mask
	}

	for p, mask := range masks {
		if e.rec != nil {
			for b := 0; b < e.buttons; b++ {
				if err := e.rec.SetKey(b, p, bit.IsSet16(uint8(b), uint16(mask))); err != nil {
					return StepResult{}, err
				}
			}
		}
		e.core.SetButtonMask(p, mask)
	}

	if e.rec != nil {
		if err := e.rec.Step(); err != nil {
			return StepResult{}, err
		}
	}
	if err := e.core.AdvanceFrame(); err != nil {
		return StepResult{}, fmt.Errorf("step: advancing frame: %w", err)
	}

	rewards := make([]float64, e.players)
	for p := range rewards {
		rewards[p] = e.core.Reward(p)
	}
	return StepResult{
		Obs:     observeCore(e.core, e.obsKind),
		Rewards: rewards,
		Done:    e.core.Done(),
	}, nil
}

// SampleAction draws a uniformly random valid action, advancing the seeded
// source. Step never calls this internally.
func (e *Environment) SampleAction() []int {
	return e.space.Sample(e.src)
}

// ActionSpec returns the shape and bounds of valid actions.
func (e *Environment) ActionSpec() space.Spec {
	return e.space.Spec()
}

// ObservationShape returns the fixed shape of Step observations.
func (e *Environment) ObservationShape() []int {
	return observeCore(e.core, e.obsKind).Shape
}

// Seed returns the effective seed driving action sampling.
func (e *Environment) Seed() uint64 {
	return e.src.EffectiveSeed()
}

// Reseed replaces the sampling stream; already-drawn samples are unaffected.
func (e *Environment) Reseed(seed uint64) {
	e.src.Reseed(seed)
}

// Players returns the player count of the loaded game.
func (e *Environment) Players() int {
	return e.players
}

// StartRecording begins recording to an explicit path immediately,
// embedding the core's current state. It replaces any active movie.
func (e *Environment) StartRecording(path string) error {
	if e.rec != nil {
		if err := e.rec.Close(); err != nil {
			return err
		}
		e.rec = nil
	}

	rec, err := movie.NewRecorder(path, e.game, e.players, e.buttons)
	if err != nil {
		return err
	}
	state, err := e.core.SaveState()
	if err != nil {
		rec.Close()
		return fmt.Errorf("record: capturing movie snapshot: %w", err)
	}
	if err := rec.SetState(state); err != nil {
		rec.Close()
		return err
	}
	e.rec = rec
	slog.Debug("movie started", "path", path, "game", e.game)
	return nil
}

// EnableRecording arms auto-start-on-reset: the next Reset begins a new
// movie in dir. No movie is opened now.
func (e *Environment) EnableRecording(dir string) {
	e.movieDir = dir
}

// DisableRecording closes any active movie, clears the armed directory and
// resets the movie sequence id.
func (e *Environment) DisableRecording() error {
	e.movieDir = ""
	e.movieID = 0
	if e.rec == nil {
		return nil
	}
	err := e.rec.Close()
	e.rec = nil
	return err
}

// Recording reports whether a movie is actively being written.
func (e *Environment) Recording() bool {
	return e.rec != nil
}

// Close releases the environment's resources, flushing any open movie.
func (e *Environment) Close() error {
	if e.rec == nil {
		return nil
	}
	err := e.rec.Close()
	e.rec = nil
	return err
}

// observeCore reads the configured observation kind from a core, copying
// the buffer so the result stays immutable.
func observeCore(core Core, kind Observations) Observation {
	switch kind {
	case ObservationsRAM:
		mem := core.Memory()
		return Observation{
			Data:  append([]byte(nil), mem...),
			Shape: []int{len(mem)},
		}
	default:
		obs := core.Screen()
		return Observation{
			Data:  append([]byte(nil), obs.Data...),
			Shape: append([]int(nil), obs.Shape...),
		}
	}
}
