package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/valerio/go-retroenv/retroenv"
	"github.com/valerio/go-retroenv/retroenv/movie"
	"github.com/valerio/go-retroenv/retroenv/render"
)

func main() {
	app := cli.NewApp()
	app.Name = "retroenv"
	app.Description = "Record and replay deterministic episodes against the built-in loopback core"
	app.Usage = "retroenv <command> [options]"
	app.Version = "1.0.0"
	app.Commands = []cli.Command{
		{
			Name:  "record",
			Usage: "Run a random-action episode and record it as a movie",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "game",
					Usage: "Game name embedded in the movie",
					Value: "Loopback",
				},
				cli.IntFlag{
					Name:  "frames",
					Usage: "Number of frames to run",
					Value: 600,
				},
				cli.IntFlag{
					Name:  "players",
					Usage: "Number of players",
					Value: 1,
				},
				cli.StringFlag{
					Name:  "movies",
					Usage: "Directory to write movie files to",
					Value: ".",
				},
				cli.Int64Flag{
					Name:  "seed",
					Usage: "Action sampling seed (negative for process entropy)",
					Value: -1,
				},
			},
			Action: runRecord,
		},
		{
			Name:      "replay",
			Usage:     "Replay a recorded movie",
			ArgsUsage: "<movie file>",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "view",
					Usage: "Render the replay in the terminal",
				},
			},
			Action: runReplay,
		},
		{
			Name:      "inspect",
			Usage:     "Print a movie's header information",
			ArgsUsage: "<movie file>",
			Action:    runInspect,
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running retroenv", "error", err)
		os.Exit(1)
	}
}

func runRecord(c *cli.Context) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("record requires a positive --frames value")
	}

	core := retroenv.NewLoopbackCore(c.Int("players"), 0)
	env, err := retroenv.New(core, retroenv.Config{
		Game:     c.String("game"),
		Actions:  retroenv.ActionsFiltered,
		MovieDir: c.String("movies"),
		Seed:     c.Int64("seed"),
	})
	if err != nil {
		return err
	}
	defer env.Close()

	slog.Info("Recording episode",
		"game", c.String("game"),
		"frames", frames,
		"seed", env.Seed())

	var total float64
	for i := 0; i < frames; i++ {
		res, err := env.Step(env.SampleAction())
		if err != nil {
			return err
		}
		total += res.Rewards[0]
		if res.Done {
			if _, err := env.Reset(); err != nil {
				return err
			}
		}
		if (i+1)%100 == 0 {
			slog.Info("Frame progress", "completed", i+1, "total", frames)
		}
	}

	slog.Info("Recording completed", "frames", frames, "total_reward", total)
	return nil
}

func runReplay(c *cli.Context) error {
	rep, err := openMovieArg(c)
	if err != nil {
		return err
	}

	core := retroenv.NewLoopbackCore(rep.Players(), 0)
	if c.Bool("view") {
		player, err := render.NewMoviePlayer(core, rep)
		if err != nil {
			return err
		}
		return player.Run()
	}

	frames := 0
	var total float64
	err = retroenv.ReplayMovie(core, rep, retroenv.ObservationsRAM, func(res retroenv.StepResult) error {
		frames++
		total += res.Rewards[0]
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Replay completed", "game", rep.GameName(), "frames", frames, "total_reward", total)
	return nil
}

func runInspect(c *cli.Context) error {
	rep, err := openMovieArg(c)
	if err != nil {
		return err
	}

	fmt.Printf("game:    %s\n", rep.GameName())
	fmt.Printf("players: %d\n", rep.Players())
	fmt.Printf("buttons: %d\n", rep.Buttons())
	fmt.Printf("frames:  %d\n", rep.Frames())
	fmt.Printf("state:   %d bytes\n", len(rep.State()))
	return nil
}

func openMovieArg(c *cli.Context) (*movie.Replayer, error) {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return nil, errors.New("no movie file provided")
	}
	return movie.OpenReplayer(c.Args().Get(0))
}
