package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lixenwraith/sticks/config"
	"github.com/lixenwraith/sticks/core"
	"github.com/lixenwraith/sticks/engine"
	"github.com/lixenwraith/sticks/render"
	"github.com/lixenwraith/sticks/terminal"
)

var (
	configFlag  = flag.String("config", "", "Path to a TOML or YAML config file")
	colorFlag   = flag.String("color", "", "Color mode: auto, truecolor, 256 (overrides config)")
	playersFlag = flag.String("players", "", "Comma-separated player names")
	debugFlag   = flag.Bool("debug", false, "Log at debug level to logs/sticks.log")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the game crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	if err := run(); err != nil {
		var pe *core.PanicError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "sticks: %v\n%s\n", err, pe.Stack)
		} else {
			fmt.Fprintf(os.Stderr, "sticks: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if *colorFlag != "" {
		cfg.Terminal.ColorMode = *colorFlag
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Logging, *debugFlag)
	if err != nil {
		return err
	}
	defer logger.Sync()

	mode, err := terminal.ParseColorMode(cfg.Terminal.ColorMode)
	if err != nil {
		return err
	}

	surface, err := terminal.Open(
		terminal.WithColorMode(mode),
		terminal.WithLogger(logger.Named("terminal")),
	)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	core.SetCrashTerminal(surface)
	defer core.SetCrashTerminal(nil)

	// Interrupt is a clean shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game := engine.New(cfg, engine.Deps{
		Display: surface,
		Input:   surface.Input(),
		Screen:  render.NewBuffer(surface),
		App:     newBoard(parsePlayers(*playersFlag)),
		Logger:  logger.Named("engine"),
	})

	if err := game.Run(ctx); err != nil {
		logger.Error("game ended with fault", zap.Error(err))
		return err
	}
	return nil
}
