package playback

import "github.com/onomono-design/duostream/player"

// Mode selects which stream is authoritative and audible.
//
// The role assignment is a pure function of the mode:
//
//	AudioOnly    → Primary is master
//	Presentation → Secondary is master
//
// unless the current track has no secondary source, in which case
// AudioOnly is forced and Presentation cannot be entered.
type Mode int

const (
	AudioOnly Mode = iota
	Presentation
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case AudioOnly:
		return "audio-only"
	case Presentation:
		return "presentation"
	default:
		return "unknown"
	}
}

// MasterID returns the stream that is authoritative in this mode.
func (m Mode) MasterID() player.ID {
	if m == Presentation {
		return player.Secondary
	}
	return player.Primary
}

// AttemptState is the playback-attempt coordinator's state machine.
//
//	Idle → Attempting → {Succeeded, Exhausted, Abandoned}
//
// Succeeded and Exhausted are the terminal outcomes of a completed chain.
// Abandoned marks an attempt cancelled by a newer attempt for the same
// stream, a mode switch, or a track load; its eventual strategy outcomes
// are discarded.
type AttemptState int

const (
	Idle AttemptState = iota
	Attempting
	Succeeded
	Exhausted
	Abandoned
)

// String returns the attempt state name.
func (s AttemptState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Terminal reports whether the attempt has settled.
func (s AttemptState) Terminal() bool {
	return s == Succeeded || s == Exhausted || s == Abandoned
}
