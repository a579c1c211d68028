// Package launcher starts the external Bluetooth settings application.
package launcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/rs/zerolog"
)

// ErrNoCommand is returned when no settings command is configured.
var ErrNoCommand = errors.New("no settings command configured")

// Launcher executes the settings command.
type Launcher struct {
	command string
	args    []string
	log     zerolog.Logger
}

// New creates a launcher for command. Output of the child is logged at
// debug level through log.
func New(command string, args []string, log zerolog.Logger) *Launcher {
	return &Launcher{
		command: command,
		args:    args,
		log:     log.With().Str("command", command).Logger(),
	}
}

// Command returns the configured command line.
func (l *Launcher) Command() []string {
	return append([]string{l.command}, l.args...)
}

// Launch starts the settings application and returns without waiting for
// it. The process is reaped in the background and outlives ctx.
func (l *Launcher) Launch(ctx context.Context) error {
	cmd, out, err := l.start(context.WithoutCancel(ctx))
	if err != nil {
		return err
	}

	l.log.Info().Int("pid", cmd.Process.Pid).Msg("settings launched")

	go func() {
		if err := l.wait(cmd, out); err != nil {
			l.log.Warn().Err(err).Msg("settings exited")
			return
		}
		l.log.Debug().Msg("settings exited")
	}()

	return nil
}

// Run starts the settings application and blocks until it exits or ctx is
// cancelled.
func (l *Launcher) Run(ctx context.Context) error {
	cmd, out, err := l.start(ctx)
	if err != nil {
		return err
	}

	return l.wait(cmd, out)
}

func (l *Launcher) start(ctx context.Context) (*exec.Cmd, io.Reader, error) {
	if l.command == "" {
		return nil, nil, ErrNoCommand
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	cmd := exec.CommandContext(ctx, l.command, l.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("launch %s: %w", l.command, err)
	}

	// Merge stderr so warnings from the settings app end up in the log too
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("launch %s: %w", l.command, err)
	}

	return cmd, stdout, nil
}

func (l *Launcher) wait(cmd *exec.Cmd, out io.Reader) error {
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		l.log.Debug().Str("output", scanner.Text()).Msg("settings output")
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", l.command, err)
	}

	return nil
}
