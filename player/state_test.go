package player

import "testing"

func TestID_String(t *testing.T) {
	if Primary.String() != "primary" {
		t.Errorf("Primary.String() = %q", Primary.String())
	}
	if Secondary.String() != "secondary" {
		t.Errorf("Secondary.String() = %q", Secondary.String())
	}
}

func TestID_Other(t *testing.T) {
	if Primary.Other() != Secondary {
		t.Error("Primary.Other() should be Secondary")
	}
	if Secondary.Other() != Primary {
		t.Error("Secondary.Other() should be Primary")
	}
}

func TestReadyState_String(t *testing.T) {
	tests := []struct {
		state ReadyState
		want  string
	}{
		{Empty, "empty"},
		{Loading, "loading"},
		{CanPlay, "can-play"},
		{CanPlayThrough, "can-play-through"},
		{ReadyState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestReadyState_AtLeast(t *testing.T) {
	if !CanPlayThrough.AtLeast(CanPlay) {
		t.Error("CanPlayThrough should satisfy AtLeast(CanPlay)")
	}
	if Loading.AtLeast(CanPlay) {
		t.Error("Loading should not satisfy AtLeast(CanPlay)")
	}
	if !CanPlay.AtLeast(CanPlay) {
		t.Error("AtLeast should be inclusive")
	}
}
