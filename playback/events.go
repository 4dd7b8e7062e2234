package playback

import (
	"time"

	"github.com/onomono-design/duostream/player"
)

// ModeChange is emitted after a mode switch has repointed the master
// role and applied the mute policy, before any resume attempt runs.
type ModeChange struct {
	Mode     Mode
	MasterID player.ID
}

// SyncCorrected is emitted when the monitor snaps the slave back onto
// the master's position.
type SyncCorrected struct {
	Drift time.Duration
}

// AttemptExhausted is emitted when every strategy in an attempt chain
// failed. Strategies lists the failures in attempt order.
type AttemptExhausted struct {
	Stream     player.ID
	Strategies []StrategyFailure
}

// TrackLoading is emitted as soon as a track load begins, before any
// stream has data. Collaborators use it to show loading indicators.
type TrackLoading struct {
	Title string
}

// TrackReady is emitted once the master stream reaches CanPlayThrough.
type TrackReady struct {
	Title string
}

// StateChange is emitted when audible playback starts or stops.
//
// NOT emitted for the slave stream: slave resumes are muted mirroring
// and produce no audible change, so the coordinator only reports the
// master's transitions here.
type StateChange struct {
	IsPlaying bool
}

// ErrorEvent is emitted for recovered failures the core handled locally
// (deferred drift corrections, failed slave resumes, load errors).
type ErrorEvent struct {
	Operation string // e.g. "sync", "load", "resume"
	Err       error
}
