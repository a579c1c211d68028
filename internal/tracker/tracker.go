// Package tracker follows which Bluetooth device is connected. It seeds its
// state from a snapshot of all BlueZ objects, keeps it current from
// PropertiesChanged signals, and renders it to a [Sink].
//
// All state changes run on a single loop goroutine owned by the [Tracker].
// Bus replies and signals are posted into that loop as continuations, so no
// two of them ever run at the same time.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dhavalsavalia/btstatus/internal/bus"
	"github.com/dhavalsavalia/btstatus/internal/device"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

// Options configures a Tracker.
type Options struct {
	// Service is the bus name of the Bluetooth daemon.
	Service string

	// RefreshDelay schedules one extra snapshot after Enable. Devices whose
	// properties are still being populated at startup are picked up by it.
	// Zero disables the extra snapshot.
	RefreshDelay time.Duration

	Labels Labels
}

// DefaultOptions returns options for a stock BlueZ setup.
func DefaultOptions() Options {
	return Options{
		Service:      device.Service,
		RefreshDelay: time.Second,
		Labels:       DefaultLabels(),
	}
}

// Tracker owns the subscription, the resolver, and the loop running every
// continuation. A Tracker is enabled once and disabled once.
type Tracker struct {
	client   bus.Client
	resolver *Resolver
	log      zerolog.Logger
	opts     Options

	mu      sync.Mutex
	enabled bool
	closed  bool
	sub     *bus.Subscription
	refresh *time.Timer
	ctx     context.Context
	cancel  context.CancelFunc

	tasks   chan func()
	done    chan struct{}
	stopped chan struct{}
}

// New returns a Tracker that renders to sink.
func New(client bus.Client, sink Sink, log zerolog.Logger, opts Options) *Tracker {
	if opts.Service == "" {
		opts.Service = device.Service
	}

	return &Tracker{
		client:   client,
		resolver: NewResolver(sink, opts.Labels),
		log:      log,
		opts:     opts,
		tasks:    make(chan func()),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Enable renders the initial state, queries the snapshot, and subscribes to
// property changes.
//
// If Enable is called after [Tracker.Disable], an error is returned.
func (t *Tracker) Enable(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return errors.New("enable: tracker is closed")
	}

	if t.enabled {
		return errors.New("enable: tracker is already enabled")
	}

	t.ctx, t.cancel = context.WithCancel(ctx)
	go t.loop()

	t.resolver.SetState(State{Status: StatusNotConnected})
	t.querySnapshot()

	sub, err := t.client.Subscribe(bus.Match{
		Sender:    t.opts.Service,
		Interface: bus.PropertiesInterface,
		Member:    bus.PropertiesChanged,
		Arg0:      device.Interface,
	}, t.onSignal)
	if err != nil {
		t.cancel()
		close(t.done)
		t.closed = true
		return fmt.Errorf("enable: subscribe to device changes: %w", err)
	}

	t.sub = sub

	if t.opts.RefreshDelay > 0 {
		t.refresh = time.AfterFunc(t.opts.RefreshDelay, func() {
			t.post(t.querySnapshot)
		})
	}

	t.enabled = true
	t.log.Debug().Str("service", t.opts.Service).Msg("tracker enabled")

	return nil
}

// Disable unsubscribes from property changes and detaches the sink. Calls
// still in flight are not cancelled on the bus, but their results are
// dropped. Disable is safe to call more than once.
func (t *Tracker) Disable() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true

	var err error

	if t.refresh != nil {
		t.refresh.Stop()
	}

	if t.sub != nil {
		err = t.sub.Close()
	}

	t.resolver.Detach()

	if t.enabled {
		t.cancel()
		close(t.done)
		<-t.stopped
	}

	t.log.Debug().Msg("tracker disabled")

	if err != nil {
		return fmt.Errorf("disable: %w", err)
	}

	return nil
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.resolver.State()
}

func (t *Tracker) loop() {
	defer close(t.stopped)

	for {
		select {
		case <-t.done:
			return
		case task := <-t.tasks:
			task()
		}
	}
}

// post hands task to the loop. It is dropped if the tracker is disabled.
func (t *Tracker) post(task func()) {
	select {
	case t.tasks <- task:
	case <-t.done:
	}
}

// await posts continuation into the loop once replies yields a result.
func (t *Tracker) await(replies <-chan bus.Reply, continuation func(bus.Reply)) {
	go func() {
		select {
		case reply := <-replies:
			t.post(func() { continuation(reply) })
		case <-t.done:
		}
	}()
}

// querySnapshot enumerates every object exposed by the Bluetooth service.
func (t *Tracker) querySnapshot() {
	replies := t.client.Call(t.ctx, t.opts.Service, device.RootPath, bus.GetManagedObjects)
	t.await(replies, t.applySnapshot)
}

func (t *Tracker) applySnapshot(reply bus.Reply) {
	state, err := SnapshotState(reply)
	if err != nil {
		t.log.Error().Err(err).Str("op", "GetManagedObjects").Msg("failed to get connected Bluetooth devices")
	} else {
		t.log.Debug().Str("op", "GetManagedObjects").Stringer("status", state.Status).Str("name", state.Name).Msg("snapshot resolved")
	}

	t.resolver.SetState(state)
}

// SnapshotState resolves a GetManagedObjects reply into the state to show:
// the first connected device, not connected when there is none, or the
// error state when the call failed or its payload could not be decoded.
func SnapshotState(reply bus.Reply) (State, error) {
	if reply.Err != nil {
		return State{Status: StatusError}, reply.Err
	}

	devices, err := device.FromManagedObjects(reply.Body)
	if err != nil {
		return State{Status: StatusError}, err
	}

	d, ok := device.FirstConnected(devices)
	if !ok {
		return State{Status: StatusNotConnected}, nil
	}

	return ConnectedTo(d.Name), nil
}

// onSignal runs on the bus goroutine and forwards to the loop.
func (t *Tracker) onSignal(signal *dbus.Signal) {
	t.post(func() { t.handleSignal(signal) })
}

func (t *Tracker) handleSignal(signal *dbus.Signal) {
	event, ok, err := device.ParseChange(signal)
	if err != nil {
		t.log.Warn().Err(err).Str("op", "PropertiesChanged").Str("path", string(signal.Path)).Msg("ignoring malformed property change")
		return
	}

	if !ok {
		return
	}

	// The change does not carry the name, so it is fetched every time.
	replies := t.client.Call(t.ctx, t.opts.Service, event.Path, bus.PropertiesGet, device.Interface, device.NameProperty)
	t.await(replies, func(reply bus.Reply) {
		t.applyChange(event, reply)
	})
}

func (t *Tracker) applyChange(event device.Event, reply bus.Reply) {
	logger := t.log.With().Str("op", "Get Name").Str("path", string(event.Path)).Logger()

	if reply.Err != nil {
		logger.Error().Err(reply.Err).Msg("failed to fetch device name")
		return
	}

	name, err := device.NameFromReply(reply.Body)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch device name")
		return
	}

	if name == "" {
		name = device.DefaultName
	}

	// A disconnect always clears the label, even when another device is
	// still connected. The next event or snapshot corrects it.
	if event.Connected {
		logger.Info().Str("name", name).Msg("device connected")
		t.resolver.SetState(ConnectedTo(name))
	} else {
		logger.Info().Str("name", name).Msg("device disconnected")
		t.resolver.SetState(State{Status: StatusNotConnected})
	}
}
