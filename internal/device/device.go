// Package device models BlueZ devices and decodes the loosely typed D-Bus
// payloads that describe them.
package device

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// BlueZ names.
const (
	Service   = "org.bluez"
	Interface = "org.bluez.Device1"
	RootPath  = dbus.ObjectPath("/")

	NameProperty      = "Name"
	ConnectedProperty = "Connected"
)

// DefaultName is used when a device does not report a usable name.
const DefaultName = "Unknown Device"

// Device is a Bluetooth device as reported by BlueZ.
type Device struct {
	Path      dbus.ObjectPath
	Name      string
	Connected bool
}

// Event represents a device connection state change.
type Event struct {
	Connected bool
	Path      dbus.ObjectPath
}

// DecodeError reports a payload whose shape is not what BlueZ documents.
type DecodeError struct {
	Op     string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
