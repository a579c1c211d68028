// Package tray shows the indicator label as a StatusNotifierItem, the tray
// icon protocol spoken by KDE, waybar, and the GNOME AppIndicator extension.
package tray

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/rs/zerolog"
)

const (
	ItemInterface    = "org.kde.StatusNotifierItem"
	ItemPath         = dbus.ObjectPath("/StatusNotifierItem")
	WatcherInterface = "org.kde.StatusNotifierWatcher"
	WatcherPath      = dbus.ObjectPath("/StatusNotifierWatcher")

	// NoMenu tells hosts the item has no dbusmenu.
	NoMenu = dbus.ObjectPath("/NO_DBUSMENU")

	IconName = "bluetooth-symbolic"
)

const itemIntrospection = `
<!DOCTYPE node PUBLIC "-//freedesktop//DTD D-BUS Object Introspection 1.0//EN"
"http://www.freedesktop.org/standards/dbus/1.0/introspect.dtd">
<node>
	<interface name="org.kde.StatusNotifierItem">
		<property name="Category" type="s" access="read"/>
		<property name="Id" type="s" access="read"/>
		<property name="Title" type="s" access="read"/>
		<property name="Status" type="s" access="read"/>
		<property name="IconName" type="s" access="read"/>
		<property name="ToolTip" type="(sa(iiay)ss)" access="read"/>
		<property name="ItemIsMenu" type="b" access="read"/>
		<property name="Menu" type="o" access="read"/>
		<method name="Activate">
			<arg name="x" type="i" direction="in"/>
			<arg name="y" type="i" direction="in"/>
		</method>
		<method name="SecondaryActivate">
			<arg name="x" type="i" direction="in"/>
			<arg name="y" type="i" direction="in"/>
		</method>
		<method name="ContextMenu">
			<arg name="x" type="i" direction="in"/>
			<arg name="y" type="i" direction="in"/>
		</method>
		<method name="Scroll">
			<arg name="delta" type="i" direction="in"/>
			<arg name="orientation" type="s" direction="in"/>
		</method>
		<signal name="NewTitle"/>
		<signal name="NewToolTip"/>
	</interface>
	<interface name="org.freedesktop.DBus.Properties">
		<method name="Get">
			<arg name="interface_name" type="s" direction="in"/>
			<arg name="property_name" type="s" direction="in"/>
			<arg name="value" type="v" direction="out"/>
		</method>
		<method name="GetAll">
			<arg name="interface_name" type="s" direction="in"/>
			<arg name="properties" type="a{sv}" direction="out"/>
		</method>
	</interface>
</node>`

// Pixmap is one ARGB32 icon image.
type Pixmap struct {
	Width  int32
	Height int32
	Data   []byte
}

// ToolTip is the StatusNotifierItem tooltip structure.
type ToolTip struct {
	IconName    string
	IconPixmap  []Pixmap
	Title       string
	Description string
}

// NewToolTip returns the tooltip shown for label.
func NewToolTip(label string) ToolTip {
	return ToolTip{
		IconName:    IconName,
		IconPixmap:  []Pixmap{},
		Title:       "Bluetooth",
		Description: label,
	}
}

// Launcher opens the Bluetooth settings application.
type Launcher interface {
	Launch(ctx context.Context) error
}

var itemID uint64

// ItemName returns a well-known name unique to this process.
func ItemName() string {
	id := atomic.AddUint64(&itemID, 1)
	return fmt.Sprintf("%s-%d-%d", ItemInterface, os.Getpid(), id)
}

// Item is a tray icon whose title follows the tracker label.
type Item struct {
	conn     *dbus.Conn
	name     string
	launcher Launcher
	log      zerolog.Logger

	mu     sync.Mutex
	props  *prop.Properties
	label  string
	closed bool
}

// New returns an unregistered item on conn. launcher may be nil.
func New(conn *dbus.Conn, launcher Launcher, log zerolog.Logger) *Item {
	return &Item{
		conn:     conn,
		name:     ItemName(),
		launcher: launcher,
		log:      log,
	}
}

// Name returns the bus name the item is registered under.
func (i *Item) Name() string {
	return i.name
}

// Register exports the item and announces it to the StatusNotifierWatcher.
func (i *Item) Register(label string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return fmt.Errorf("register: item is closed")
	}

	if err := i.conn.Export(methods{i}, ItemPath, ItemInterface); err != nil {
		return fmt.Errorf("register: failed to export %s: %w", ItemInterface, err)
	}

	props, err := prop.Export(i.conn, ItemPath, i.propertyMap(label))
	if err != nil {
		return fmt.Errorf("register: failed to export properties: %w", err)
	}
	i.props = props
	i.label = label

	if err := i.conn.Export(introspect.Introspectable(itemIntrospection), ItemPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("register: failed to export introspection: %w", err)
	}

	reply, err := i.conn.RequestName(i.name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("register: failed to request name %s: %w", i.name, err)
	}

	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("register: name %s already taken", i.name)
	}

	watcher := i.conn.Object(WatcherInterface, WatcherPath)
	if call := watcher.Call(WatcherInterface+".RegisterStatusNotifierItem", 0, i.name); call.Err != nil {
		return fmt.Errorf("register: no status notifier watcher: %w", call.Err)
	}

	i.log.Debug().Str("name", i.name).Msg("tray item registered")

	return nil
}

func (i *Item) propertyMap(label string) prop.Map {
	return prop.Map{
		ItemInterface: map[string]*prop.Prop{
			"Category":   {Value: "Hardware", Writable: false, Emit: prop.EmitFalse},
			"Id":         {Value: "btstatus", Writable: false, Emit: prop.EmitFalse},
			"Title":      {Value: label, Writable: false, Emit: prop.EmitTrue},
			"Status":     {Value: "Active", Writable: false, Emit: prop.EmitTrue},
			"IconName":   {Value: IconName, Writable: false, Emit: prop.EmitFalse},
			"ToolTip":    {Value: NewToolTip(label), Writable: false, Emit: prop.EmitTrue},
			"ItemIsMenu": {Value: false, Writable: false, Emit: prop.EmitFalse},
			"Menu":       {Value: NoMenu, Writable: false, Emit: prop.EmitFalse},
		},
	}
}

// SetText updates the title and tooltip and notifies hosts.
func (i *Item) SetText(text string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed || i.props == nil || text == i.label {
		return
	}

	i.label = text
	i.props.SetMust(ItemInterface, "Title", text)
	i.props.SetMust(ItemInterface, "ToolTip", NewToolTip(text))

	for _, signal := range []string{"NewTitle", "NewToolTip"} {
		if err := i.conn.Emit(ItemPath, ItemInterface+"."+signal); err != nil {
			i.log.Warn().Err(err).Str("op", signal).Msg("failed to notify tray host")
		}
	}
}

// Close removes the item from the bus.
func (i *Item) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil
	}
	i.closed = true

	if i.props == nil {
		return nil
	}

	_ = i.conn.Export(nil, ItemPath, ItemInterface)
	_ = i.conn.Export(nil, ItemPath, "org.freedesktop.DBus.Introspectable")

	if _, err := i.conn.ReleaseName(i.name); err != nil {
		return fmt.Errorf("close: failed to release %s: %w", i.name, err)
	}

	return nil
}

func (i *Item) activate() {
	if i.launcher == nil {
		i.log.Warn().Msg("no settings command configured")
		return
	}

	go func() {
		if err := i.launcher.Launch(context.Background()); err != nil {
			i.log.Error().Err(err).Str("op", "Activate").Msg("failed to open settings")
		}
	}()
}

// methods is exported on the bus. It is kept apart from Item so that only
// the protocol methods are visible there.
type methods struct {
	item *Item
}

func (m methods) Activate(x, y int32) *dbus.Error {
	m.item.activate()
	return nil
}

func (m methods) SecondaryActivate(x, y int32) *dbus.Error {
	m.item.activate()
	return nil
}

func (m methods) ContextMenu(x, y int32) *dbus.Error {
	return nil
}

func (m methods) Scroll(delta int32, orientation string) *dbus.Error {
	return nil
}
