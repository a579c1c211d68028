package device

import (
	"slices"
	"strings"

	"github.com/godbus/dbus/v5"
)

// Decode builds a Device from its org.bluez.Device1 properties. A missing or
// mistyped Name becomes DefaultName and a missing or mistyped Connected
// becomes false.
func Decode(path dbus.ObjectPath, props map[string]dbus.Variant) Device {
	d := Device{Path: path, Name: DefaultName}

	if v, ok := props[NameProperty]; ok {
		if name, ok := v.Value().(string); ok && name != "" {
			d.Name = name
		}
	}

	if v, ok := props[ConnectedProperty]; ok {
		d.Connected, _ = v.Value().(bool)
	}

	return d
}

// FromManagedObjects decodes the reply body of
// org.freedesktop.DBus.ObjectManager.GetManagedObjects and returns every
// object that carries the device interface, ordered by object path.
func FromManagedObjects(body []any) ([]Device, error) {
	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant
	if err := dbus.Store(body, &objects); err != nil {
		return nil, &DecodeError{Op: "GetManagedObjects", Reason: err.Error()}
	}

	devices := make([]Device, 0, len(objects))
	for path, interfaces := range objects {
		props, ok := interfaces[Interface]
		if !ok {
			continue
		}

		devices = append(devices, Decode(path, props))
	}

	// godbus hands dictionaries over as maps, so the order on the wire is
	// lost. Sort to keep the pick among several connected devices stable.
	slices.SortFunc(devices, func(a, b Device) int {
		return strings.Compare(string(a.Path), string(b.Path))
	})

	return devices, nil
}

// FirstConnected returns the first connected device.
func FirstConnected(devices []Device) (Device, bool) {
	for _, d := range devices {
		if d.Connected {
			return d, true
		}
	}

	return Device{}, false
}

// ParseChange decodes an org.freedesktop.DBus.Properties.PropertiesChanged
// signal. It reports ok=false when the signal is about another interface or
// does not touch the Connected property.
func ParseChange(signal *dbus.Signal) (event Event, ok bool, err error) {
	var (
		iface       string
		changed     map[string]dbus.Variant
		invalidated []string
	)

	if err := dbus.Store(signal.Body, &iface, &changed, &invalidated); err != nil {
		return Event{}, false, &DecodeError{Op: "PropertiesChanged", Reason: err.Error()}
	}

	if iface != Interface {
		return Event{}, false, nil
	}

	v, exists := changed[ConnectedProperty]
	if !exists {
		return Event{}, false, nil
	}

	connected, isBool := v.Value().(bool)
	if !isBool {
		return Event{}, false, &DecodeError{
			Op:     "PropertiesChanged",
			Reason: "Connected is " + v.Signature().String() + ", want b",
		}
	}

	return Event{Connected: connected, Path: signal.Path}, true, nil
}

// NameFromReply decodes the reply body of
// org.freedesktop.DBus.Properties.Get for the Name property.
func NameFromReply(body []any) (string, error) {
	var v dbus.Variant
	if err := dbus.Store(body, &v); err != nil {
		return "", &DecodeError{Op: "Get Name", Reason: err.Error()}
	}

	name, ok := v.Value().(string)
	if !ok {
		return "", &DecodeError{Op: "Get Name", Reason: "Name is " + v.Signature().String() + ", want s"}
	}

	return name, nil
}
