package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dhavalsavalia/btstatus/internal/bus"
	"github.com/godbus/dbus/v5"
)

// fakeCall records a call made through fakeClient.
type fakeCall struct {
	Path    dbus.ObjectPath
	Method  string
	Args    []any
	replies chan bus.Reply
}

// Reply completes a pending call.
func (c *fakeCall) Reply(r bus.Reply) {
	c.replies <- r
}

// fakeClient simulates the bus. Calls are answered by respond when it
// returns true; otherwise they stay pending until the test replies.
type fakeClient struct {
	mu           sync.Mutex
	respond      func(path dbus.ObjectPath, method string) (bus.Reply, bool)
	calls        []*fakeCall
	handler      func(*dbus.Signal)
	match        bus.Match
	subscribeErr error
	closed       int
	callAdded    chan *fakeCall
}

func newFakeClient() *fakeClient {
	return &fakeClient{callAdded: make(chan *fakeCall, 64)}
}

func (c *fakeClient) Call(_ context.Context, _ string, path dbus.ObjectPath, method string, args ...any) <-chan bus.Reply {
	call := &fakeCall{Path: path, Method: method, Args: args, replies: make(chan bus.Reply, 1)}

	c.mu.Lock()
	c.calls = append(c.calls, call)
	respond := c.respond
	c.mu.Unlock()

	if respond != nil {
		if r, ok := respond(path, method); ok {
			call.Reply(r)
		}
	}

	c.callAdded <- call
	return call.replies
}

func (c *fakeClient) Subscribe(match bus.Match, handler func(*dbus.Signal)) (*bus.Subscription, error) {
	if c.subscribeErr != nil {
		return nil, c.subscribeErr
	}

	c.mu.Lock()
	c.handler = handler
	c.match = match
	c.mu.Unlock()

	return bus.NewSubscription(func() error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed++
		c.handler = nil
		return nil
	}), nil
}

// Emit delivers a signal the way the bus goroutine would.
func (c *fakeClient) Emit(signal *dbus.Signal) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(signal)
	}
}

// WaitCall returns the next call made through the client.
func (c *fakeClient) WaitCall(t *testing.T) *fakeCall {
	t.Helper()

	select {
	case call := <-c.callAdded:
		return call
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a bus call")
		return nil
	}
}

// recordingSink collects every text it receives.
type recordingSink struct {
	texts chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{texts: make(chan string, 64)}
}

func (s *recordingSink) SetText(text string) {
	s.texts <- text
}

// WaitText fails the test unless the next text is want.
func (s *recordingSink) WaitText(t *testing.T, want string) {
	t.Helper()

	select {
	case got := <-s.texts:
		if got != want {
			t.Fatalf("sink text = %q, want %q", got, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for sink text %q", want)
	}
}

// ExpectNone fails the test if any text arrives within d.
func (s *recordingSink) ExpectNone(t *testing.T, d time.Duration) {
	t.Helper()

	select {
	case got := <-s.texts:
		t.Fatalf("unexpected sink text %q", got)
	case <-time.After(d):
	}
}

var errNoReply = errors.New("org.freedesktop.DBus.Error.NoReply")
