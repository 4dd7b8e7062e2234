// Package player provides the stream handle layer: a thin wrapper around
// one media stream's state (position, duration, paused, muted, ready
// state) plus the platform-gated Play primitive. The playback package
// builds the synchronization and attempt machinery on top of two handles.
package player

import (
	"context"
	"time"
)

// readyBufferSize bounds the ready-change notification channel. Slow
// readers miss intermediate states, never the current one: ReadyState()
// always reflects the latest value.
const readyBufferSize = 4

// Handle is the contract one media stream exposes to the playback core.
// Implementations wrap whatever the platform provides: a locally decoded
// file (Audio), an embedder-driven remote element, or a Mock in tests.
type Handle interface {
	ID() ID

	// Load assigns a new source reference and starts fetching it,
	// advancing ReadyState as data arrives. Clear drops the source and
	// resets ReadyState to Empty.
	Load(src string) error
	Clear()
	Source() string

	// Position is the current playback position. SetPosition seeks.
	Position() time.Duration
	SetPosition(pos time.Duration)

	// Duration is only meaningful once ReadyState is CanPlay or better.
	Duration() time.Duration

	Paused() bool

	// Play starts or resumes playback. It may fail or hang on platforms
	// that gate unsolicited playback; callers bound it with the context.
	Play(ctx context.Context) error
	Pause()

	Muted() bool
	SetMuted(muted bool)

	ReadyState() ReadyState

	// ReadyChanged receives a value whenever ReadyState advances.
	ReadyChanged() <-chan ReadyState
}
