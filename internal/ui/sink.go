package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Sender delivers messages to a running program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramSink renders tracker labels in the terminal UI.
//
// SetText blocks until the program accepts the message. Once the program has
// exited it returns immediately.
type ProgramSink struct {
	sender Sender
}

// NewProgramSink returns a sink that forwards labels to sender.
func NewProgramSink(sender Sender) *ProgramSink {
	return &ProgramSink{sender: sender}
}

func (s *ProgramSink) SetText(text string) {
	s.sender.Send(labelMsg{text: text})
}

// PanelHook mirrors log messages into the log panel. It must not be attached
// to a logger used from inside Update, since Send would wait on the loop that
// is calling it.
type PanelHook struct {
	sender Sender
}

// NewPanelHook returns a hook forwarding to sender.
func NewPanelHook(sender Sender) *PanelHook {
	return &PanelHook{sender: sender}
}

func (h *PanelHook) Run(_ *zerolog.Event, level zerolog.Level, message string) {
	if message == "" {
		return
	}

	h.sender.Send(logMsg{at: time.Now(), level: panelLevel(level), text: message})
}

func panelLevel(level zerolog.Level) LogLevel {
	switch {
	case level >= zerolog.ErrorLevel:
		return LogError
	case level == zerolog.WarnLevel:
		return LogWarning
	default:
		return LogInfo
	}
}

// LineSink writes each new label as a line. Consecutive repeats are
// collapsed so the output only shows transitions.
type LineSink struct {
	mu      sync.Mutex
	w       io.Writer
	last    string
	written bool
}

// NewLineSink returns a sink writing to w.
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

func (s *LineSink) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.written && text == s.last {
		return
	}

	s.last = text
	s.written = true
	fmt.Fprintln(s.w, text)
}
