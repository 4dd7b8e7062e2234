package player

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

var (
	speakerMu          sync.Mutex
	speakerInitialized bool
	speakerRate        beep.SampleRate
)

// ensureSpeaker initializes the shared speaker once. Later streams are
// resampled to the first format's rate by beep, so a single init serves
// both handles and the unlock platform.
func ensureSpeaker(rate beep.SampleRate) error {
	speakerMu.Lock()
	defer speakerMu.Unlock()
	if speakerInitialized {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return err
	}
	speakerInitialized = true
	speakerRate = rate
	return nil
}

// Audio is a stream handle backed by a locally decoded file played
// through the speaker. It covers the Primary (audio) stream on desktop;
// the Secondary stream is typically an embedder-supplied handle driving a
// video surface.
type Audio struct {
	mu sync.Mutex

	id       ID
	src      string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	paused  bool
	muted   bool
	ready   ReadyState
	started bool

	readyCh chan ReadyState
}

// NewAudio creates a new audio handle with the given identity.
func NewAudio(id ID) *Audio {
	return &Audio{
		id:      id,
		paused:  true,
		readyCh: make(chan ReadyState, readyBufferSize),
	}
}

func (a *Audio) ID() ID { return a.id }

// Load decodes the file at src. A local decode buffers the full stream,
// so on success the handle jumps straight to CanPlayThrough.
func (a *Audio) Load(src string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.clearLocked()
	a.setReadyLocked(Loading)

	ext := strings.ToLower(filepath.Ext(src))
	if ext != ".mp3" && ext != ".flac" {
		a.setReadyLocked(Empty)
		return fmt.Errorf("%w: %s", ErrUnsupportedSource, ext)
	}

	f, err := os.Open(src)
	if err != nil {
		a.setReadyLocked(Empty)
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	}
	if err != nil {
		f.Close()
		a.setReadyLocked(Empty)
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := ensureSpeaker(format.SampleRate); err != nil {
		streamer.Close()
		f.Close()
		a.setReadyLocked(Empty)
		return err
	}

	a.src = src
	a.file = f
	a.streamer = streamer
	a.format = format
	a.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2, Silent: a.muted}
	a.setReadyLocked(CanPlay)
	a.setReadyLocked(CanPlayThrough)
	return nil
}

// Clear drops the source and releases decode resources.
func (a *Audio) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()
}

func (a *Audio) clearLocked() {
	if a.started {
		speaker.Clear()
	}
	if a.streamer != nil {
		a.streamer.Close()
		a.streamer = nil
	}
	if a.file != nil {
		a.file.Close()
		a.file = nil
	}
	a.ctrl = nil
	a.volume = nil
	a.src = ""
	a.paused = true
	a.started = false
	a.ready = Empty
}

func (a *Audio) Source() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src
}

func (a *Audio) Position() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Position())
}

// SetPosition seeks to an absolute position, clamped to the stream.
func (a *Audio) SetPosition(pos time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil || a.streamer.Len() == 0 {
		return
	}
	n := a.format.SampleRate.N(pos)
	n = max(n, 0)
	n = min(n, a.streamer.Len()-1)
	speaker.Lock()
	_ = a.streamer.Seek(n)
	speaker.Unlock()
}

func (a *Audio) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.streamer == nil {
		return 0
	}
	return a.format.SampleRate.D(a.streamer.Len())
}

func (a *Audio) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Play starts or resumes playback. The first call hands the volume chain
// to the speaker; later calls just unpause the ctrl.
func (a *Audio) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil {
		return ErrNoSource
	}

	if !a.started {
		a.started = true
		speaker.Play(a.volume)
	}
	speaker.Lock()
	a.ctrl.Paused = false
	speaker.Unlock()
	a.paused = false
	return nil
}

func (a *Audio) Pause() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl == nil || a.paused {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = true
	speaker.Unlock()
	a.paused = true
}

func (a *Audio) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

func (a *Audio) SetMuted(muted bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = muted
	if a.volume != nil {
		speaker.Lock()
		a.volume.Silent = muted
		speaker.Unlock()
	}
}

func (a *Audio) ReadyState() ReadyState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ready
}

func (a *Audio) ReadyChanged() <-chan ReadyState {
	return a.readyCh
}

func (a *Audio) setReadyLocked(s ReadyState) {
	a.ready = s
	select {
	case a.readyCh <- s:
	default:
	}
}

// Verify Audio implements Handle at compile time.
var _ Handle = (*Audio)(nil)
