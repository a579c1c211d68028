package tray

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

func TestToolTip_Signature(t *testing.T) {
	got := dbus.SignatureOf(NewToolTip("Headphones")).String()
	if got != "(sa(iiay)ss)" {
		t.Errorf("signature = %s, want (sa(iiay)ss)", got)
	}
}

func TestNewToolTip(t *testing.T) {
	tip := NewToolTip("Headphones")

	if tip.Description != "Headphones" {
		t.Errorf("description = %q, want %q", tip.Description, "Headphones")
	}
	if tip.IconName != IconName {
		t.Errorf("icon = %q, want %q", tip.IconName, IconName)
	}
	if tip.IconPixmap == nil {
		t.Error("pixmap list must be empty, not nil")
	}
}

func TestItemName_Unique(t *testing.T) {
	a, b := ItemName(), ItemName()

	if a == b {
		t.Errorf("names not unique: %s", a)
	}

	prefix := fmt.Sprintf("%s-%d-", ItemInterface, os.Getpid())
	if !strings.HasPrefix(a, prefix) {
		t.Errorf("name %q does not start with %q", a, prefix)
	}
}

func TestItem_PropertyMap(t *testing.T) {
	item := New(nil, nil, zerolog.Nop())
	props := item.propertyMap("Not Connected")[ItemInterface]

	for _, name := range []string{"Category", "Id", "Title", "Status", "IconName", "ToolTip", "ItemIsMenu", "Menu"} {
		if _, ok := props[name]; !ok {
			t.Errorf("property %s missing", name)
		}
	}

	if props["Title"].Value != "Not Connected" {
		t.Errorf("Title = %v, want Not Connected", props["Title"].Value)
	}
	if props["Menu"].Value != NoMenu {
		t.Errorf("Menu = %v, want %v", props["Menu"].Value, NoMenu)
	}
}

func TestItem_SetTextBeforeRegister(t *testing.T) {
	item := New(nil, nil, zerolog.Nop())

	// Nothing is exported yet, so this must not touch the connection.
	item.SetText("Headphones")

	if err := item.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

type countingLauncher struct {
	mu    sync.Mutex
	calls int
	done  chan struct{}
}

func (l *countingLauncher) Launch(context.Context) error {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	l.done <- struct{}{}
	return nil
}

func TestMethods_ActivateLaunches(t *testing.T) {
	launcher := &countingLauncher{done: make(chan struct{}, 2)}
	m := methods{New(nil, launcher, zerolog.Nop())}

	if err := m.Activate(0, 0); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if err := m.SecondaryActivate(0, 0); err != nil {
		t.Fatalf("SecondaryActivate() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-launcher.done:
		case <-time.After(time.Second):
			t.Fatal("launcher not called")
		}
	}

	if err := m.ContextMenu(0, 0); err != nil {
		t.Errorf("ContextMenu() error: %v", err)
	}
	if err := m.Scroll(1, "vertical"); err != nil {
		t.Errorf("Scroll() error: %v", err)
	}
}

func TestItem_RegisterAfterClose(t *testing.T) {
	item := New(nil, nil, zerolog.Nop())
	_ = item.Close()

	if err := item.Register("Not Connected"); err == nil {
		t.Fatal("expected error for Register after Close")
	}
}
