package playback

import (
	"context"

	"github.com/onomono-design/duostream/player"
)

// Strategy is one named unlock technique. Run must attempt to leave the
// stream playing: unlock tricks end by calling Play on the target stream,
// so a strategy succeeds iff the stream actually started.
//
// Strategies share this uniform shape so the chain is extensible without
// touching the coordinator's control flow.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, h player.Handle) error
}

// Platform exposes the platform-specific unlock primitives the default
// chain is built from. Embedders targeting gated platforms (browsers,
// mobile webviews) implement these against their bridge;
// player.SpeakerPlatform covers desktop and NopPlatform covers headless
// runs.
type Platform interface {
	// UnlockSilentStream plays a very short, near-silent buffer through
	// a temporary element to satisfy platform autoplay gating.
	UnlockSilentStream(ctx context.Context) error

	// ResumeAudioContext opens the platform audio context and plays a
	// one-sample silent buffer.
	ResumeAudioContext(ctx context.Context) error

	// SimulateGesture synthesizes a click/touch sequence on a transient,
	// invisible, focusable element immediately before the retry.
	SimulateGesture(ctx context.Context) error

	// PlaySilentResource plays a short silent resource at low but
	// non-zero volume.
	PlaySilentResource(ctx context.Context) error
}

// NopPlatform is a Platform whose primitives all succeed without side
// effects. Useful for tests and headless environments where nothing
// gates playback.
type NopPlatform struct{}

func (NopPlatform) UnlockSilentStream(context.Context) error { return nil }
func (NopPlatform) ResumeAudioContext(context.Context) error { return nil }
func (NopPlatform) SimulateGesture(context.Context) error    { return nil }
func (NopPlatform) PlaySilentResource(context.Context) error { return nil }

// Strategy names, in canonical chain order.
const (
	StrategyDirectPlay      = "direct-play"
	StrategyPlatformUnlock  = "platform-unlock"
	StrategyDirectPlayRetry = "direct-play-retry"
	StrategyAudioContext    = "audio-context-unlock"
	StrategyGesture         = "gesture-simulation"
	StrategySilentBuffer    = "silent-buffer-playback"
)

// DefaultStrategies builds the canonical six-step fallback chain on top
// of the given platform. Each unlock step finishes with a play retry on
// the target stream; silent-buffer-playback therefore doubles as the
// final retry.
func DefaultStrategies(p Platform) []Strategy {
	directPlay := func(ctx context.Context, h player.Handle) error {
		return h.Play(ctx)
	}
	unlockThenPlay := func(unlock func(context.Context) error) func(context.Context, player.Handle) error {
		return func(ctx context.Context, h player.Handle) error {
			if err := unlock(ctx); err != nil {
				return err
			}
			return h.Play(ctx)
		}
	}

	return []Strategy{
		{Name: StrategyDirectPlay, Run: directPlay},
		{Name: StrategyPlatformUnlock, Run: unlockThenPlay(p.UnlockSilentStream)},
		{Name: StrategyDirectPlayRetry, Run: directPlay},
		{Name: StrategyAudioContext, Run: unlockThenPlay(p.ResumeAudioContext)},
		{Name: StrategyGesture, Run: unlockThenPlay(p.SimulateGesture)},
		{Name: StrategySilentBuffer, Run: unlockThenPlay(p.PlaySilentResource)},
	}
}
