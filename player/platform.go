package player

import (
	"context"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const defaultUnlockRate = beep.SampleRate(44100)

// SpeakerPlatform implements the playback package's Platform contract for
// desktop builds: every unlock primitive routes a short silent buffer
// through the shared speaker, which both warms the audio device and
// proves the process may emit sound.
type SpeakerPlatform struct {
	rate beep.SampleRate
}

// NewSpeakerPlatform creates a speaker-backed unlock platform.
func NewSpeakerPlatform() *SpeakerPlatform {
	return &SpeakerPlatform{rate: defaultUnlockRate}
}

// UnlockSilentStream plays a very short silent buffer through a temporary
// streamer, the desktop analogue of the iOS silent-stream trick.
func (p *SpeakerPlatform) UnlockSilentStream(ctx context.Context) error {
	return p.playSilence(ctx, 50*time.Millisecond)
}

// ResumeAudioContext opens the audio device with a near-one-sample silent
// buffer.
func (p *SpeakerPlatform) ResumeAudioContext(ctx context.Context) error {
	return p.playSilence(ctx, time.Millisecond)
}

// SimulateGesture has no desktop analogue: input-gesture gating is a
// browser policy. It reports success so the chain proceeds to the retry.
func (p *SpeakerPlatform) SimulateGesture(_ context.Context) error {
	return nil
}

// PlaySilentResource plays a longer silent buffer, standing in for the
// low-but-nonzero-volume silent resource used on gated platforms.
func (p *SpeakerPlatform) PlaySilentResource(ctx context.Context) error {
	return p.playSilence(ctx, 100*time.Millisecond)
}

func (p *SpeakerPlatform) playSilence(ctx context.Context, d time.Duration) error {
	if err := ensureSpeaker(p.rate); err != nil {
		return err
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(
		beep.Silence(p.rate.N(d)),
		beep.Callback(func() { close(done) }),
	))
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
