package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default values for optional config fields.
const (
	DefaultBus             = "system"
	DefaultService         = "org.bluez"
	DefaultRefreshDelay    = Duration(time.Second)
	DefaultNotConnected    = "Not Connected"
	DefaultError           = "Error"
	DefaultSettingsCommand = "gnome-control-center"
	DefaultLogLevel        = "info"
)

// DefaultSettingsArgs opens the Bluetooth panel of the settings app.
var DefaultSettingsArgs = []string{"bluetooth"}

// ExampleConfig is the template for --init with documentation comments.
const ExampleConfig = `# btstatus configuration
# See: https://github.com/dhavalsavalia/btstatus

[bluetooth]
# Bus the Bluetooth daemon lives on: "system" or "session"
bus = "system"

# Bus name of the Bluetooth daemon
service = "org.bluez"

# Extra snapshot after startup for devices still being set up ("0s" disables)
refresh_delay = "1s"

[display]
# Label when no device is connected
not_connected = "Not Connected"

# Label when the device list could not be read
error = "Error"

[settings]
# Command run when the indicator is clicked
command = "gnome-control-center"
args = ["bluetooth"]

[log]
# One of: debug, info, warn, error
level = "info"

# Log file; empty logs to stderr (headless and tray) or nowhere (terminal UI)
file = ""
`

// ErrConfigExists is returned by GenerateExampleConfig when the target file
// is already present.
var ErrConfigExists = errors.New("config file already exists")

// GenerateExampleConfig writes the example config to the given path.
// If path is empty, it uses the default XDG path.
// Returns the path where the file was written.
func GenerateExampleConfig(path string) (string, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return "", fmt.Errorf("cannot write config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(ExampleConfig); err != nil {
		return "", fmt.Errorf("cannot write config file: %w", err)
	}

	return path, nil
}
