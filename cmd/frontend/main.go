// Command frontend opens a window and drives a frontend.Context from a main
// script, or replays a JSON test script with optional PNG captures.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/frontend"
	"github.com/phanxgames/frontend/console"
	"github.com/phanxgames/frontend/internal/config"
	"github.com/phanxgames/frontend/script"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "frontend:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := config.Flags()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(cfg.LogLevel()).
		With().Timestamp().Logger()
	frontend.SetLogger(&logger)

	state := frontend.NewEbitenState()
	state.ClearColor = frontend.Color{R: 0.118, G: 0.118, B: 0.157, A: 1}

	c, err := frontend.NewContext(frontend.Options{
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		GLState:     state,
		UI:          console.New(os.Stdout),
		Debug:       cfg.Debug.Enabled,
		DebugCanvas: cfg.Debug.Canvas,
	})
	if err != nil {
		return err
	}
	defer c.Destroy()

	mainUnit, err := preload(c.Preload(), cfg.Scripts)
	if err != nil {
		return err
	}
	engine := script.New(c)
	if mainUnit != "" {
		if _, err := engine.RunPreloaded(mainUnit); err != nil {
			return fmt.Errorf("run %s: %w", mainUnit, err)
		}
	}

	var runner *frontend.TestRunner
	if cfg.Capture.TestScript != "" || cfg.Capture.EveryFrame {
		exporter := frontend.NewPNGExporter(cfg.Capture.Dir)
		exporter.EveryFrame = cfg.Capture.EveryFrame
		c.OnRendered(exporter)

		if cfg.Capture.TestScript != "" {
			data, err := os.ReadFile(cfg.Capture.TestScript)
			if err != nil {
				return err
			}
			if runner, err = frontend.LoadTestScript(data); err != nil {
				return err
			}
			runner.SetExporter(exporter)
		}
		defer func() {
			logger.Info().Int("count", len(exporter.Written())).Str("dir", cfg.Capture.Dir).Msg("captures written")
		}()
	}

	if cfg.Capture.Headless {
		if runner == nil {
			return errors.New("--headless needs a test script")
		}
		frames, err := frontend.RunHeadless(c, runner, cfg.Capture.MaxFrames)
		logger.Info().Int("frames", frames).Msg("headless run finished")
		return err
	}

	return frontend.Run(c, state, frontend.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
		TPS:       cfg.Window.TPS,
		Runner:    runner,
	})
}

// preload compiles every .js file under the preload directory plus the main
// script into the table and returns the main script's unit name.
func preload(t *frontend.PreloadTable, cfg config.ScriptsConfig) (string, error) {
	if cfg.PreloadDir != "" {
		err := filepath.WalkDir(cfg.PreloadDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".js") {
				return nil
			}
			rel, err := filepath.Rel(cfg.PreloadDir, path)
			if err != nil {
				return err
			}
			return compileFile(t, filepath.ToSlash(rel), path)
		})
		if err != nil {
			return "", fmt.Errorf("preload %s: %w", cfg.PreloadDir, err)
		}
	}
	if cfg.Main == "" {
		return "", nil
	}
	name := filepath.ToSlash(cfg.Main)
	if err := compileFile(t, name, cfg.Main); err != nil {
		return "", err
	}
	return name, nil
}

func compileFile(t *frontend.PreloadTable, name, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	frontend.Logger().Debug().Str("unit", name).Msg("preloading")
	return t.Compile(name, string(src))
}
