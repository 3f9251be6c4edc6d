// Command image-compare opens raster images in synchronized comparison
// windows with optional sliding overlays.
package main

import (
	"context"
	"fmt"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"image-compare/internal/app"
	"image-compare/internal/version"
	"image-compare/ui/mainwindow"
	"image-compare/ui/prefs"
)

func main() {
	cmd := &cli.Command{
		Name:      "image-compare",
		Usage:     "compare raster images with synchronized pan/zoom and sliding overlays",
		Version:   version.Version,
		ArgsUsage: "[image files...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "overlay",
				Usage: "combine the given files (2-4) into one sliding overlay instead of separate windows",
			},
			&cli.BoolFlag{
				Name:  "no-sync",
				Usage: "start with synchronized pan/zoom disabled",
			},
			&cli.BoolFlag{
				Name:  "smooth",
				Usage: "use interpolated sampling instead of nearest-neighbor",
			},
			&cli.BoolFlag{
				Name:  "fullscreen",
				Usage: "open the control window fullscreen",
			},
			&cli.StringFlag{
				Name:  "session",
				Usage: "restore a saved comparison session file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	log := app.NewLogger(cmd.Bool("debug"))
	defer func() { _ = log.Sync() }()
	log.Info("starting", zap.String("version", version.Version))

	p := prefs.Load()
	if cmd.Bool("smooth") {
		p.SmoothSampling = true
	}
	if cmd.Bool("fullscreen") {
		p.Fullscreen = true
	}

	state := app.NewState(log)
	state.SetSmoothSampling(p.SmoothSampling)
	if cmd.Bool("no-sync") || !p.SyncEnabled {
		state.SetSyncEnabled(false, 0)
	}

	win := mainwindow.New(fyneapp.New(), state, p, log)

	files := cmd.Args().Slice()
	if path := cmd.String("session"); path != "" {
		if err := win.RestoreSession(path); err != nil {
			return err
		}
	}
	if cmd.Bool("overlay") {
		if err := win.CreateOverlay(files); err != nil {
			return err
		}
	} else {
		for _, path := range files {
			if err := win.OpenImageFile(path); err != nil {
				return err
			}
		}
	}

	win.ShowAndRun()
	return nil
}
