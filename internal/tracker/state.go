package tracker

import "sync"

// Status is the kind of connectivity shown to the user.
type Status int

const (
	StatusNotConnected Status = iota
	StatusConnected
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusNotConnected:
		return "not connected"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the single value displayed by the indicator. The zero value is
// the not connected state.
type State struct {
	Status Status

	// Name of the connected device. Only meaningful with StatusConnected.
	Name string
}

// ConnectedTo returns the state for a connected device.
func ConnectedTo(name string) State {
	return State{Status: StatusConnected, Name: name}
}

// Labels holds the texts rendered for states that carry no device name.
type Labels struct {
	NotConnected string
	Error        string
}

// DefaultLabels returns the stock labels.
func DefaultLabels() Labels {
	return Labels{
		NotConnected: "Not Connected",
		Error:        "Error",
	}
}

// Render returns the text shown for s.
func (s State) Render(labels Labels) string {
	switch s.Status {
	case StatusConnected:
		return s.Name
	case StatusError:
		return labels.Error
	default:
		return labels.NotConnected
	}
}

// Sink receives the rendered state. SetText must be idempotent.
type Sink interface {
	SetText(text string)
}

// Resolver holds the current state and forwards every change to its sink.
type Resolver struct {
	mu     sync.Mutex
	state  State
	sink   Sink
	labels Labels
}

// NewResolver returns a resolver rendering to sink.
func NewResolver(sink Sink, labels Labels) *Resolver {
	return &Resolver{sink: sink, labels: labels}
}

// SetState stores s and pushes its text to the sink right away. Once the
// resolver is detached the state is still recorded but nothing is rendered.
func (r *Resolver) SetState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.state = s

	if r.sink != nil {
		r.sink.SetText(s.Render(r.labels))
	}
}

// State returns the current state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Detach drops the sink. When Detach returns, no further SetText call
// reaches it.
func (r *Resolver) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sink = nil
}
