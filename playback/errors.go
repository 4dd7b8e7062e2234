package playback

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/onomono-design/duostream/player"
)

var (
	// ErrNoSecondaryStream is returned by SwitchMode(Presentation) when
	// the current track has no secondary source. The mode is left
	// unchanged; callers should check availability before switching.
	ErrNoSecondaryStream = errors.New("playback: current track has no secondary stream")

	// ErrAttemptAbandoned is returned by an attempt superseded by a newer
	// attempt for the same stream, a mode switch, or a track load.
	ErrAttemptAbandoned = errors.New("playback: attempt abandoned")

	// ErrPermissionDenied is surfaced by the device permission gate at
	// the collaborator boundary. The core treats it as "proceed with
	// degraded capability", never as fatal.
	ErrPermissionDenied = errors.New("playback: permission denied")

	// ErrClosed is returned by operations on a closed core.
	ErrClosed = errors.New("playback: core is closed")
)

// StrategyFailure records why one unlock strategy failed.
type StrategyFailure struct {
	Name   string
	Reason string
}

func (f StrategyFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Reason)
}

// AutoplayBlockedError is raised only after the full unlock-strategy
// chain is exhausted. It carries per-strategy diagnostics in attempt
// order.
type AutoplayBlockedError struct {
	Stream     player.ID
	Strategies []StrategyFailure
}

func (e *AutoplayBlockedError) Error() string {
	names := lo.Map(e.Strategies, func(f StrategyFailure, _ int) string {
		return f.String()
	})
	return fmt.Sprintf("playback: autoplay blocked on %s stream after %d strategies (%s)",
		e.Stream, len(e.Strategies), strings.Join(names, "; "))
}

// DriftError is the non-fatal record of a deferred drift correction: the
// slave's target position would land past the master's end-of-stream
// guard, so the correction is skipped this tick and retried later.
type DriftError struct {
	Drift          time.Duration
	Target         time.Duration
	MasterDuration time.Duration
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("playback: drift correction deferred: target %s exceeds guarded master duration %s (drift %s)",
		e.Target, e.MasterDuration, e.Drift)
}
