package device

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

const (
	pathA = dbus.ObjectPath("/org/bluez/hci0/dev_AA_AA_AA_AA_AA_AA")
	pathB = dbus.ObjectPath("/org/bluez/hci0/dev_BB_BB_BB_BB_BB_BB")
)

func props(kv ...any) map[string]dbus.Variant {
	m := make(map[string]dbus.Variant, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = dbus.MakeVariant(kv[i+1])
	}
	return m
}

func managedObjects(objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant) []any {
	return []any{objects}
}

func TestDecode_Defaults(t *testing.T) {
	tests := []struct {
		name          string
		props         map[string]dbus.Variant
		wantName      string
		wantConnected bool
	}{
		{"all present", props("Name", "Headphones", "Connected", true), "Headphones", true},
		{"missing name", props("Connected", true), DefaultName, true},
		{"empty name", props("Name", "", "Connected", false), DefaultName, false},
		{"mistyped name", props("Name", int32(7)), DefaultName, false},
		{"missing connected", props("Name", "Mouse"), "Mouse", false},
		{"mistyped connected", props("Name", "Mouse", "Connected", "yes"), "Mouse", false},
		{"empty", props(), DefaultName, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(pathA, tt.props)
			if d.Path != pathA {
				t.Errorf("Path = %q, want %q", d.Path, pathA)
			}
			if d.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", d.Name, tt.wantName)
			}
			if d.Connected != tt.wantConnected {
				t.Errorf("Connected = %v, want %v", d.Connected, tt.wantConnected)
			}
		})
	}
}

func TestFromManagedObjects(t *testing.T) {
	body := managedObjects(map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		"/org/bluez/hci0": {
			"org.bluez.Adapter1": props("Powered", true),
		},
		pathB: {
			Interface:          props("Name", "Mouse", "Connected", false),
			"org.bluez.Input1": props(),
		},
		pathA: {
			Interface: props("Name", "Headphones", "Connected", true),
		},
	})

	devices, err := FromManagedObjects(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].Path != pathA || devices[1].Path != pathB {
		t.Errorf("devices not ordered by path: %q, %q", devices[0].Path, devices[1].Path)
	}

	d, ok := FirstConnected(devices)
	if !ok {
		t.Fatal("expected a connected device")
	}
	if d.Name != "Headphones" {
		t.Errorf("first connected = %q, want %q", d.Name, "Headphones")
	}
}

func TestFromManagedObjects_NoDevices(t *testing.T) {
	body := managedObjects(map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		"/org/bluez/hci0": {"org.bluez.Adapter1": props("Powered", true)},
	})

	devices, err := FromManagedObjects(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("len(devices) = %d, want 0", len(devices))
	}
	if _, ok := FirstConnected(devices); ok {
		t.Error("FirstConnected reported a device for an empty list")
	}
}

func TestFromManagedObjects_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body []any
	}{
		{"empty body", nil},
		{"wrong type", []any{"not a dict"}},
		{"extra values", []any{map[dbus.ObjectPath]map[string]map[string]dbus.Variant{}, "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromManagedObjects(tt.body)

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("error = %v, want *DecodeError", err)
			}
		})
	}
}

func TestFirstConnected_PicksFirstInOrder(t *testing.T) {
	devices := []Device{
		{Path: pathA, Name: "Keyboard", Connected: false},
		{Path: pathB, Name: "Speaker", Connected: true},
		{Path: "/org/bluez/hci0/dev_CC", Name: "Watch", Connected: true},
	}

	d, ok := FirstConnected(devices)
	if !ok || d.Name != "Speaker" {
		t.Errorf("FirstConnected = %+v, %v; want Speaker", d, ok)
	}
}

func changeSignal(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Path: path,
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Body: []any{iface, changed, []string{}},
	}
}

func TestParseChange(t *testing.T) {
	tests := []struct {
		name    string
		signal  *dbus.Signal
		want    Event
		wantOK  bool
		wantErr bool
	}{
		{
			name:   "connected",
			signal: changeSignal(pathB, Interface, props("Connected", true)),
			want:   Event{Connected: true, Path: pathB},
			wantOK: true,
		},
		{
			name:   "disconnected",
			signal: changeSignal(pathA, Interface, props("Connected", false, "RSSI", int16(-40))),
			want:   Event{Connected: false, Path: pathA},
			wantOK: true,
		},
		{
			name:   "no connected key",
			signal: changeSignal(pathA, Interface, props("RSSI", int16(-40))),
		},
		{
			name:   "other interface",
			signal: changeSignal(pathA, "org.bluez.MediaControl1", props("Connected", true)),
		},
		{
			name:    "connected not bool",
			signal:  changeSignal(pathA, Interface, props("Connected", "yes")),
			wantErr: true,
		},
		{
			name:    "short body",
			signal:  &dbus.Signal{Path: pathA, Body: []any{Interface}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseChange(tt.signal)

			if tt.wantErr {
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("error = %v, want *DecodeError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNameFromReply(t *testing.T) {
	name, err := NameFromReply([]any{dbus.MakeVariant("Mouse")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Mouse" {
		t.Errorf("name = %q, want %q", name, "Mouse")
	}

	if _, err := NameFromReply([]any{dbus.MakeVariant(uint32(1))}); err == nil {
		t.Error("expected error for non-string name")
	}

	if _, err := NameFromReply(nil); err == nil {
		t.Error("expected error for empty reply")
	}
}
