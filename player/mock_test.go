package player

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMock_StartsPausedAndEmpty(t *testing.T) {
	m := NewMock(Primary)

	if !m.Paused() {
		t.Error("a fresh handle should be paused")
	}
	if m.ReadyState() != Empty {
		t.Errorf("ReadyState() = %v, want Empty", m.ReadyState())
	}
	if m.Source() != "" {
		t.Errorf("Source() = %q, want empty", m.Source())
	}
}

func TestMock_LoadAdvancesToLoadingAndNotifies(t *testing.T) {
	m := NewMock(Primary)

	if err := m.Load("/audio/ch1.mp3"); err != nil {
		t.Fatalf("Load() = %v", err)
	}

	if m.Source() != "/audio/ch1.mp3" {
		t.Errorf("Source() = %q", m.Source())
	}
	if m.ReadyState() != Loading {
		t.Errorf("ReadyState() = %v, want Loading", m.ReadyState())
	}
	select {
	case s := <-m.ReadyChanged():
		if s != Loading {
			t.Errorf("notified state = %v, want Loading", s)
		}
	default:
		t.Fatal("Load should notify ready-state watchers")
	}
}

func TestMock_PlayHonorsConfiguredError(t *testing.T) {
	m := NewMock(Primary)
	wantErr := errors.New("blocked")
	m.SetPlayError(wantErr)

	if err := m.Play(context.Background()); err != wantErr {
		t.Errorf("Play() = %v, want configured error", err)
	}
	if !m.Paused() {
		t.Error("a failed play must leave the stream paused")
	}

	m.SetPlayError(nil)
	if err := m.Play(context.Background()); err != nil {
		t.Errorf("Play() = %v, want nil", err)
	}
	if m.Paused() {
		t.Error("a successful play should unpause")
	}
	if m.PlayCalls() != 2 {
		t.Errorf("PlayCalls() = %d, want 2", m.PlayCalls())
	}
}

func TestMock_ClearResetsEverything(t *testing.T) {
	m := NewMock(Secondary)
	if err := m.Load("/video/ch1.mp4"); err != nil {
		t.Fatal(err)
	}
	m.SimulateReadyState(CanPlayThrough)
	m.SetDuration(3 * time.Minute)
	m.AdvanceTo(30 * time.Second)
	m.SimulatePlaying()

	m.Clear()

	if m.Source() != "" || m.ReadyState() != Empty || !m.Paused() {
		t.Error("Clear should reset source, ready state and pause the stream")
	}
	if m.Position() != 0 || m.Duration() != 0 {
		t.Error("Clear should reset position and duration")
	}
}

func TestMock_RecordsSeeksAndMutes(t *testing.T) {
	m := NewMock(Primary)

	m.SetPosition(10 * time.Second)
	m.SetPosition(20 * time.Second)
	m.SetMuted(true)
	m.SetMuted(false)

	seeks := m.SeekCalls()
	if len(seeks) != 2 || seeks[1] != 20*time.Second {
		t.Errorf("SeekCalls() = %v", seeks)
	}
	mutes := m.MuteCalls()
	if len(mutes) != 2 || mutes[0] != true || mutes[1] != false {
		t.Errorf("MuteCalls() = %v", mutes)
	}
	if m.Position() != 20*time.Second {
		t.Errorf("Position() = %v, want 20s", m.Position())
	}
	if m.Muted() {
		t.Error("Muted() should reflect the last SetMuted")
	}
}

func TestMock_AdvanceToDoesNotRecordSeek(t *testing.T) {
	m := NewMock(Primary)

	m.AdvanceTo(42 * time.Second)

	if len(m.SeekCalls()) != 0 {
		t.Error("AdvanceTo simulates playback progress, not a seek")
	}
	if m.Position() != 42*time.Second {
		t.Errorf("Position() = %v, want 42s", m.Position())
	}
}
