// Package render provides a terminal viewer for replaying recorded movies.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-retroenv/retroenv"
	"github.com/valerio/go-retroenv/retroenv/movie"
	"github.com/valerio/go-retroenv/retroenv/space"
)

const frameTime = time.Second / 60

var shadeChars = []rune{'░', '▒', '▓', '█'}

// MoviePlayer steps a movie against a core at 60 fps, drawing each frame's
// screen observation as shaded characters. Quit with q or Esc.
type MoviePlayer struct {
	screen  tcell.Screen
	core    retroenv.Core
	rep     *movie.Replayer
	running bool
	started bool
}

// NewMoviePlayer initializes the terminal and loads the movie's embedded
// state into the core.
func NewMoviePlayer(core retroenv.Core, rep *movie.Replayer) (*MoviePlayer, error) {
	if rep.Players() != core.Players() || rep.Buttons() != len(core.Buttons()) {
		return nil, fmt.Errorf("render: movie does not match core layout")
	}
	if state := rep.State(); len(state) > 0 {
		if err := core.LoadState(state); err != nil {
			return nil, fmt.Errorf("render: loading movie state: %w", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}

	return &MoviePlayer{screen: screen, core: core, rep: rep, running: true}, nil
}

// Run plays the movie to its end or until the user quits.
func (p *MoviePlayer) Run() error {
	defer func() {
		slog.Info("Finishing terminal")
		p.screen.Fini()
	}()

	p.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	p.screen.Clear()

	go p.handleInput()

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	for p.running {
		select {
		case <-ticker.C:
			if err := p.advance(); err != nil {
				if errors.Is(err, movie.ErrReplayExhausted) {
					return nil
				}
				return err
			}
			p.render()
			p.screen.Show()
		case <-signals:
			p.running = false
			slog.Info("Received signal to stop")
			return nil
		}
	}

	return nil
}

func (p *MoviePlayer) advance() error {
	if err := p.rep.Step(); err != nil {
		return err
	}
	for player := 0; player < p.rep.Players(); player++ {
		var mask uint16
		for b := 0; b < p.rep.Buttons(); b++ {
			pressed, err := p.rep.GetKey(b, player)
			if err != nil {
				return err
			}
			if pressed {
				mask |= 1 << b
			}
		}
		p.core.SetButtonMask(player, space.EncodedAction(mask))
	}
	// Frame 0 only carries the starting button state; no emulator frame
	// was executed for it at record time.
	if !p.started {
		p.started = true
		return nil
	}
	return p.core.AdvanceFrame()
}

func (p *MoviePlayer) handleInput() {
	for p.running {
		ev := p.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				p.running = false
			}
		case *tcell.EventResize:
			p.screen.Sync()
		}
	}
}

func (p *MoviePlayer) render() {
	obs := p.core.Screen()
	if len(obs.Shape) != 2 {
		return
	}
	height, width := obs.Shape[0], obs.Shape[1]

	p.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			shade := int(obs.Data[y*width+x]) / 64
			p.screen.SetContent(x, y, shadeChars[shade], nil, style)
		}
	}
}
