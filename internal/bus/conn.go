package bus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

// Bus kinds accepted by Connect.
const (
	System  = "system"
	Session = "session"
)

// Conn implements [Client] on top of a godbus connection.
type Conn struct {
	conn *dbus.Conn
}

// Connect opens a private connection to the system or session bus.
func Connect(kind string) (*Conn, error) {
	var (
		conn *dbus.Conn
		err  error
	)

	switch kind {
	case System:
		conn, err = dbus.ConnectSystemBus()
	case Session:
		conn, err = dbus.ConnectSessionBus()
	default:
		return nil, fmt.Errorf("unknown bus %q", kind)
	}

	if err != nil {
		return nil, &Error{Op: "connect " + kind + " bus", Err: err}
	}

	return New(conn), nil
}

// New wraps an existing connection.
func New(conn *dbus.Conn) *Conn {
	return &Conn{conn: conn}
}

// Raw returns the underlying godbus connection.
func (c *Conn) Raw() *dbus.Conn {
	return c.conn
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) Call(ctx context.Context, dest string, path dbus.ObjectPath, method string, args ...any) <-chan Reply {
	replies := make(chan Reply, 1)

	call := c.conn.Object(dest, path).GoWithContext(ctx, method, 0, make(chan *dbus.Call, 1), args...)

	go func() {
		<-call.Done
		replies <- replyFromCall(call)
	}()

	return replies
}

func (c *Conn) Subscribe(match Match, handler func(*dbus.Signal)) (*Subscription, error) {
	opts := match.options()

	if err := c.conn.AddMatchSignal(opts...); err != nil {
		return nil, &Error{Op: "add match " + match.String(), Err: err}
	}

	signals := make(chan *dbus.Signal, 64)
	c.conn.Signal(signals)

	go func() {
		for signal := range signals {
			if !match.accepts(signal) {
				continue
			}

			handler(signal)
		}
	}()

	return NewSubscription(func() error {
		err := c.conn.RemoveMatchSignal(opts...)

		c.conn.RemoveSignal(signals)
		close(signals)

		if err != nil {
			return &Error{Op: "remove match " + match.String(), Err: err}
		}

		return nil
	}), nil
}

// Subscription is an active signal subscription.
type Subscription struct {
	once    sync.Once
	release func() error
	err     error
}

// NewSubscription returns a subscription that runs release on the first
// call to Close.
func NewSubscription(release func() error) *Subscription {
	return &Subscription{release: release}
}

// Close releases the subscription. Only the first call has an effect;
// later calls return the first result.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		if s.release != nil {
			s.err = s.release()
		}
	})

	return s.err
}

func replyFromCall(call *dbus.Call) Reply {
	if call.Err != nil {
		return Reply{Err: &Error{Op: call.Method, Err: call.Err}}
	}

	return Reply{Body: call.Body}
}

func (m Match) options() []dbus.MatchOption {
	var opts []dbus.MatchOption

	if m.Sender != "" {
		opts = append(opts, dbus.WithMatchSender(m.Sender))
	}

	if m.Interface != "" {
		opts = append(opts, dbus.WithMatchInterface(m.Interface))
	}

	if m.Member != "" {
		opts = append(opts, dbus.WithMatchMember(m.Member))
	}

	if m.Arg0 != "" {
		opts = append(opts, dbus.WithMatchArg(0, m.Arg0))
	}

	if m.PathNamespace != "" {
		opts = append(opts, dbus.WithMatchPathNamespace(m.PathNamespace))
	}

	return opts
}

// accepts filters signals delivered on the shared connection channel. The
// sender is not compared because signals carry the unique name of the
// owner rather than its well-known name.
func (m Match) accepts(signal *dbus.Signal) bool {
	if m.Interface != "" && m.Member != "" && signal.Name != m.Interface+"."+m.Member {
		return false
	}

	if m.Arg0 != "" {
		if len(signal.Body) < 1 {
			return false
		}

		arg0, ok := signal.Body[0].(string)
		if !ok || arg0 != m.Arg0 {
			return false
		}
	}

	if m.PathNamespace != "" && !inNamespace(signal.Path, m.PathNamespace) {
		return false
	}

	return true
}

func inNamespace(path, namespace dbus.ObjectPath) bool {
	if namespace == "/" || path == namespace {
		return true
	}

	return strings.HasPrefix(string(path), string(namespace)+"/")
}

// String renders the match as a D-Bus match rule, for diagnostics.
func (m Match) String() string {
	rule := "type='signal'"

	if m.Sender != "" {
		rule += ",sender='" + m.Sender + "'"
	}

	if m.Interface != "" {
		rule += ",interface='" + m.Interface + "'"
	}

	if m.Member != "" {
		rule += ",member='" + m.Member + "'"
	}

	if m.Arg0 != "" {
		rule += ",arg0='" + m.Arg0 + "'"
	}

	if m.PathNamespace != "" {
		rule += ",path_namespace='" + string(m.PathNamespace) + "'"
	}

	return rule
}
