// Package playback implements the synchronized dual-stream playback
// core: a mode-aware synchronization engine keeping two independently
// buffered streams within a bounded offset under a single-audible-source
// invariant, and a bounded-retry attempt coordinator that sequences
// platform unlock strategies to start playback.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onomono-design/duostream/config"
	"github.com/onomono-design/duostream/player"
)

// Verify Core implements Service at compile time.
var _ Service = (*Core)(nil)

// Core wires the mode controller, sync monitor, attempt coordinator and
// track load sequencer over one pair of stream handles.
type Core struct {
	primary   player.Handle
	secondary player.Handle

	pub   *publisher
	ctrl  *Controller
	coord *Coordinator
	mon   *Monitor
	seq   *Sequencer
	log   *logrus.Entry

	gesture func() bool

	mu     sync.Mutex
	closed bool
}

type options struct {
	cfg        *config.Config
	log        *logrus.Entry
	platform   Platform
	strategies []Strategy
	gesture    func() bool
}

// Option configures a Core.
type Option func(*options)

// WithConfig overrides the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger routes the core's logging through the given entry.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) { o.log = log }
}

// WithPlatform supplies the unlock primitives the default strategy chain
// is built from.
func WithPlatform(p Platform) Option {
	return func(o *options) { o.platform = p }
}

// WithStrategies replaces the strategy chain entirely, bypassing the
// platform-derived default.
func WithStrategies(chain []Strategy) Option {
	return func(o *options) { o.strategies = chain }
}

// WithGestureSignal supplies the device collaborator's "is this a direct
// user interaction" signal, consulted when a load or explicit play
// starts an attempt. The freshness window is the caller's concern: the
// function should compare against its own last-input timestamp.
func WithGestureSignal(fn func() bool) Option {
	return func(o *options) { o.gesture = fn }
}

// New creates a playback core over the two handles and starts the sync
// monitor.
func New(primary, secondary player.Handle, opts ...Option) *Core {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	if o.log == nil {
		o.log = logrus.StandardLogger().WithField("component", "playback")
	}
	if o.platform == nil {
		o.platform = NopPlatform{}
	}
	if o.strategies == nil {
		o.strategies = DefaultStrategies(o.platform)
	}
	if o.gesture == nil {
		o.gesture = func() bool { return false }
	}

	pub := newPublisher()
	coord := newCoordinator(o.strategies, o.cfg.StrategyTimeout(), pub, o.log)
	ctrl := newController(primary, secondary, coord, pub, o.log)
	coord.onSuccess = func(id player.ID, _ string) {
		ctrl.notePlaybackStarted(id)
	}
	policy := SyncPolicy{
		DriftThreshold:   o.cfg.DriftThreshold(),
		PollInterval:     o.cfg.PollInterval(),
		EndOfStreamGuard: o.cfg.EndOfStreamGuard(),
	}
	mon := newMonitor(ctrl, coord, policy, pub, o.log)
	seq := newSequencer(primary, secondary, ctrl, coord, pub, o.log, o.cfg.Device.Mobile, o.gesture)

	c := &Core{
		primary:   primary,
		secondary: secondary,
		pub:       pub,
		ctrl:      ctrl,
		coord:     coord,
		mon:       mon,
		seq:       seq,
		log:       o.log,
		gesture:   o.gesture,
	}
	mon.Start()
	return c
}

// LoadTrack hands the track to the sequencer.
func (c *Core) LoadTrack(ctx context.Context, t Track, autoPlay bool) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.seq.LoadTrack(ctx, t, autoPlay)
}

// CurrentTrack returns the most recently loaded track.
func (c *Core) CurrentTrack() Track {
	return c.seq.CurrentTrack()
}

// SwitchMode changes the presentation mode.
func (c *Core) SwitchMode(target Mode) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.ctrl.SwitchMode(target)
}

// Mode returns the current presentation mode.
func (c *Core) Mode() Mode { return c.ctrl.Mode() }

// MasterID returns the currently authoritative stream's id.
func (c *Core) MasterID() player.ID { return c.ctrl.MasterID() }

// HasSecondary reports whether the current track has a secondary source.
func (c *Core) HasSecondary() bool { return c.ctrl.HasSecondary() }

// Play starts playback of the master stream through the attempt
// coordinator, consulting the gesture signal for strategy ordering.
func (c *Core) Play(ctx context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.coord.Start(ctx, c.ctrl.Master(), c.gesture())
}

// Pause pauses the master stream. The monitor mirrors the pause onto the
// slave on its next tick; pausing the slave here too just saves a tick.
func (c *Core) Pause() {
	master := c.ctrl.Master()
	if master.Paused() {
		return
	}
	master.Pause()
	c.ctrl.Slave().Pause()
	c.ctrl.notePlaybackStopped()
}

// Toggle pauses when playing and plays when paused.
func (c *Core) Toggle(ctx context.Context) error {
	if c.IsPlaying() {
		c.Pause()
		return nil
	}
	return c.Play(ctx)
}

// SeekTo writes both streams' positions directly and suppresses drift
// correction for one tick, so stale correction cannot fight the scrub.
func (c *Core) SeekTo(pos time.Duration) {
	c.mon.SuppressOnce()
	c.ctrl.Master().SetPosition(pos)
	c.ctrl.Slave().SetPosition(pos)
}

// SetSeeking sets or clears the scrubbing collaborator's flag; while set
// the monitor makes no corrections.
func (c *Core) SetSeeking(seeking bool) {
	c.mon.SetSeeking(seeking)
}

// IsPlaying reports whether the master stream is playing.
func (c *Core) IsPlaying() bool {
	return !c.ctrl.Master().Paused()
}

// Position returns the master stream's position.
func (c *Core) Position() time.Duration {
	return c.ctrl.Master().Position()
}

// Duration returns the master stream's duration; meaningful only once
// the master's ready state is CanPlay or better.
func (c *Core) Duration() time.Duration {
	return c.ctrl.Master().Duration()
}

// IsAudioPreloaded reports the primary stream's preload flag.
func (c *Core) IsAudioPreloaded() bool { return c.seq.IsAudioPreloaded() }

// IsSecondaryPreloaded reports the secondary stream's preload flag.
func (c *Core) IsSecondaryPreloaded() bool { return c.seq.IsSecondaryPreloaded() }

// MuteInvariantHolds reports whether exactly one stream is audible.
func (c *Core) MuteInvariantHolds() bool { return c.ctrl.MuteInvariantHolds() }

// Subscribe creates a new event subscription.
func (c *Core) Subscribe() *Subscription {
	return c.pub.subscribe()
}

// Close stops the monitor, abandons in-flight attempts, pauses both
// streams and signals subscribers. Every failure path, this one
// included, leaves both handles paused and consistent.
func (c *Core) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.mon.Stop()
	c.coord.CancelAll()
	c.seq.close()
	c.primary.Pause()
	c.secondary.Pause()
	c.pub.closeAll()
	return nil
}

func (c *Core) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
