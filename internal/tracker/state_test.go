package tracker

import "testing"

func TestState_Render(t *testing.T) {
	labels := DefaultLabels()

	tests := []struct {
		state State
		want  string
	}{
		{State{}, "Not Connected"},
		{ConnectedTo("Headphones"), "Headphones"},
		{State{Status: StatusError}, "Error"},
	}

	for _, tt := range tests {
		if got := tt.state.Render(labels); got != tt.want {
			t.Errorf("Render(%+v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestStatus_String(t *testing.T) {
	if StatusConnected.String() != "connected" {
		t.Errorf("StatusConnected = %q", StatusConnected.String())
	}
	if Status(42).String() != "unknown" {
		t.Errorf("Status(42) = %q", Status(42).String())
	}
}

func TestResolver_ForwardsEveryState(t *testing.T) {
	sink := newRecordingSink()
	r := NewResolver(sink, DefaultLabels())

	r.SetState(ConnectedTo("Mouse"))
	r.SetState(ConnectedTo("Mouse"))
	r.SetState(State{})

	sink.WaitText(t, "Mouse")
	sink.WaitText(t, "Mouse")
	sink.WaitText(t, "Not Connected")
}

func TestResolver_Detach(t *testing.T) {
	sink := newRecordingSink()
	r := NewResolver(sink, DefaultLabels())

	r.Detach()
	r.SetState(ConnectedTo("Mouse"))

	sink.ExpectNone(t, 0)

	if got := r.State(); got != ConnectedTo("Mouse") {
		t.Errorf("State() = %+v, want Connected(Mouse)", got)
	}
}
