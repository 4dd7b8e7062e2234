package playback

import (
	"context"
	"time"

	"github.com/onomono-design/duostream/player"
)

// Service defines the dual-stream playback core's contract.
type Service interface {
	// Track lifecycle
	LoadTrack(ctx context.Context, t Track, autoPlay bool) error
	CurrentTrack() Track

	// Mode control
	SwitchMode(target Mode) error
	Mode() Mode
	MasterID() player.ID
	HasSecondary() bool

	// Playback control
	Play(ctx context.Context) error
	Pause()
	Toggle(ctx context.Context) error
	SeekTo(pos time.Duration)
	SetSeeking(seeking bool)

	// State queries
	IsPlaying() bool
	Position() time.Duration
	Duration() time.Duration
	IsAudioPreloaded() bool
	IsSecondaryPreloaded() bool
	MuteInvariantHolds() bool

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}
