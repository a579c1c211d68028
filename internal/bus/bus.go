// Package bus is a small asynchronous layer over a D-Bus connection. It
// offers the two primitives the tracker needs: a method call whose reply is
// delivered on a channel, and a signal subscription delivered to a handler.
package bus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Reply is the outcome of an asynchronous method call.
type Reply struct {
	Body []any
	Err  error
}

// Match describes which signals a subscription receives. Empty fields are
// not part of the match rule.
type Match struct {
	Sender        string
	Interface     string
	Member        string
	Arg0          string
	PathNamespace dbus.ObjectPath
}

// Client issues method calls and subscribes to signals.
type Client interface {
	// Call invokes method on the object at path owned by dest. The returned
	// channel receives exactly one Reply once the peer answers. No timeout is
	// applied; ctx only bounds the call if the caller cancels it.
	Call(ctx context.Context, dest string, path dbus.ObjectPath, method string, args ...any) <-chan Reply

	// Subscribe installs a match rule and delivers matching signals to
	// handler until the subscription is closed.
	Subscribe(match Match, handler func(*dbus.Signal)) (*Subscription, error)
}

// Error is returned for failed bus operations.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Names of the standard interfaces used by the tracker.
const (
	PropertiesInterface    = "org.freedesktop.DBus.Properties"
	ObjectManagerInterface = "org.freedesktop.DBus.ObjectManager"

	PropertiesGet           = PropertiesInterface + ".Get"
	PropertiesChanged       = "PropertiesChanged"
	PropertiesChangedSignal = PropertiesInterface + "." + PropertiesChanged
	GetManagedObjects       = ObjectManagerInterface + ".GetManagedObjects"
)
