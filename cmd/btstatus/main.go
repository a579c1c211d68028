package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dhavalsavalia/btstatus/internal/bus"
	"github.com/dhavalsavalia/btstatus/internal/config"
	"github.com/dhavalsavalia/btstatus/internal/launcher"
	"github.com/dhavalsavalia/btstatus/internal/logging"
	"github.com/dhavalsavalia/btstatus/internal/tracker"
	"github.com/dhavalsavalia/btstatus/internal/tray"
	"github.com/dhavalsavalia/btstatus/internal/ui"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.BoolVar(versionFlag, "v", false, "Print version and exit (shorthand)")

	configPath := flag.String("config", "", "Path to config file")
	initConfig := flag.Bool("init", false, "Generate example config file")
	noTUI := flag.Bool("no-tui", false, "Print each label change on stdout")
	trayMode := flag.Bool("tray", false, "Show the label as a tray icon")

	flag.Parse()

	if *versionFlag {
		fmt.Printf("btstatus %s\n", version)
		os.Exit(0)
	}

	if *initConfig {
		path, err := config.GenerateExampleConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created config at %s\n", path)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *trayMode:
		err = runTray(ctx, cfg)
	case *noTUI:
		err = runHeadless(ctx, cfg)
	default:
		err = runTUI(ctx, cfg)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// trackerOptions maps the config onto tracker options.
func trackerOptions(cfg *config.Config) tracker.Options {
	return tracker.Options{
		Service:      cfg.Bluetooth.Service,
		RefreshDelay: cfg.Bluetooth.Delay(),
		Labels: tracker.Labels{
			NotConnected: cfg.Display.NotConnected,
			Error:        cfg.Display.Error,
		},
	}
}

func newLauncher(cfg *config.Config, log zerolog.Logger) *launcher.Launcher {
	return launcher.New(cfg.Settings.Command, cfg.Settings.Args, log.With().Str("component", "launcher").Logger())
}

// track runs a tracker rendering to sink until ctx is done.
func track(ctx context.Context, cfg *config.Config, sink tracker.Sink, log zerolog.Logger) error {
	conn, err := bus.Connect(cfg.Bluetooth.Bus)
	if err != nil {
		return err
	}
	defer conn.Close()

	t := tracker.New(conn, sink, log.With().Str("component", "tracker").Logger(), trackerOptions(cfg))
	if err := t.Enable(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	return t.Disable()
}

// runHeadless prints the label on every transition, for status bars and
// scripts.
func runHeadless(ctx context.Context, cfg *config.Config) error {
	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	log.Info().Str("version", version).Str("bus", cfg.Bluetooth.Bus).Msg("btstatus started")

	return track(ctx, cfg, ui.NewLineSink(os.Stdout), log)
}

// runTray registers a StatusNotifierItem on the session bus.
func runTray(ctx context.Context, cfg *config.Config) error {
	log, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	session, err := bus.Connect(bus.Session)
	if err != nil {
		return err
	}
	defer session.Close()

	item := tray.New(session.Raw(), newLauncher(cfg, log), log.With().Str("component", "tray").Logger())
	if err := item.Register(cfg.Display.NotConnected); err != nil {
		return err
	}

	log.Info().Str("version", version).Str("name", item.Name()).Msg("btstatus tray started")

	return errors.Join(track(ctx, cfg, item, log), item.Close())
}

// runTUI shows the label and the log in the terminal.
func runTUI(ctx context.Context, cfg *config.Config) error {
	// The screen belongs to the UI, so only a log file receives output.
	base, closer, err := logging.New(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	defer closer.Close()

	conn, err := bus.Connect(cfg.Bluetooth.Bus)
	if err != nil {
		return err
	}
	defer conn.Close()

	model := ui.NewModel(cfg, newLauncher(cfg, base), version)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	log := base.Hook(ui.NewPanelHook(p))
	t := tracker.New(conn, ui.NewProgramSink(p), log.With().Str("component", "tracker").Logger(), trackerOptions(cfg))

	// Enable renders the first label, which waits for the program to run.
	enableErr := make(chan error, 1)
	go func() {
		err := t.Enable(ctx)
		if err != nil {
			p.Quit()
		}
		enableErr <- err
	}()

	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) {
		runErr = nil
	}

	// Sends are no-ops once the program has exited, so Enable has returned
	// or is about to.
	startErr := <-enableErr

	return errors.Join(runErr, startErr, t.Disable())
}
