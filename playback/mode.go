package playback

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/onomono-design/duostream/player"
)

// Controller owns the current presentation mode and the master/slave
// role assignment over the two stream handles, and enforces the
// single-audible-source invariant: in steady state exactly one handle is
// unmuted (both may be muted transiently during a switch).
type Controller struct {
	mu sync.Mutex

	primary   player.Handle
	secondary player.Handle
	coord     *Coordinator
	pub       *publisher
	log       *logrus.Entry

	mode          Mode
	hasSecondary  bool
	firstPlayDone bool
}

func newController(primary, secondary player.Handle, coord *Coordinator, pub *publisher, log *logrus.Entry) *Controller {
	return &Controller{
		primary:   primary,
		secondary: secondary,
		coord:     coord,
		pub:       pub,
		log:       log,
		mode:      AudioOnly,
	}
}

// Mode returns the current presentation mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// MasterID returns the id of the currently authoritative stream.
func (c *Controller) MasterID() player.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode.MasterID()
}

// Master returns the currently authoritative handle.
func (c *Controller) Master() player.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handleForLocked(c.mode.MasterID())
}

// Slave returns the handle being corrected to follow the master.
func (c *Controller) Slave() player.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handleForLocked(c.mode.MasterID().Other())
}

func (c *Controller) handleForLocked(id player.ID) player.Handle {
	if id == player.Secondary {
		return c.secondary
	}
	return c.primary
}

// SwitchMode moves to the target mode. No-op if already there. Fails
// with ErrNoSecondaryStream when Presentation is requested for a track
// without a secondary source, leaving the mode unchanged.
//
// Side effects run in a fixed order: pause both streams, repoint the
// master role, apply the mute policy, emit mode-changed, then resume the
// new master best-effort if playback was live before the switch.
func (c *Controller) SwitchMode(target Mode) error {
	c.mu.Lock()
	if target == c.mode {
		c.mu.Unlock()
		return nil
	}
	if target == Presentation && !c.hasSecondary {
		c.mu.Unlock()
		return ErrNoSecondaryStream
	}

	oldMaster := c.handleForLocked(c.mode.MasterID())
	wasPlaying := !oldMaster.Paused()
	carryOver := oldMaster.Position()

	// Pausing both first means a second switch arriving mid-transition
	// observes a consistent paused state.
	c.primary.Pause()
	c.secondary.Pause()

	c.mode = target
	newMaster := c.handleForLocked(target.MasterID())
	c.applyMutePolicyLocked()

	c.log.WithFields(logrus.Fields{
		"mode":   target,
		"master": target.MasterID(),
	}).Info("mode switched")
	c.pub.modeChanged(ModeChange{Mode: target, MasterID: target.MasterID()})
	c.mu.Unlock()

	// The switch invalidates any attempt still targeting the stream that
	// lost master status, playing or not: an attempt may be mid-chain
	// while the stream is still paused, and a stale late success would
	// unpause the now-slave stream.
	c.coord.Cancel(oldMaster.ID())

	if wasPlaying {
		// Cross-stream position carry-over: the incoming master resumes
		// from the outgoing master's last known position. The resume is
		// a best-effort continuation, not a first play; a blocked
		// autoplay here is discarded.
		newMaster.SetPosition(carryOver)
		go func() {
			if err := c.coord.Start(context.Background(), newMaster, false); err != nil {
				c.log.WithField("stream", newMaster.ID()).
					Debugf("resume after mode switch discarded: %v", err)
			}
		}()
	}
	return nil
}

// SetTrack records whether the freshly loaded track has a secondary
// source, forcing AudioOnly when it does not, and re-applies the mute
// policy for the new master.
func (c *Controller) SetTrack(hasSecondary bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasSecondary = hasSecondary
	if !hasSecondary && c.mode != AudioOnly {
		c.mode = AudioOnly
		c.pub.modeChanged(ModeChange{Mode: AudioOnly, MasterID: AudioOnly.MasterID()})
	}
	c.applyMutePolicyLocked()
}

// HasSecondary reports whether the current track carries a secondary
// source. Callers should check this before switching to Presentation.
func (c *Controller) HasSecondary() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasSecondary
}

// applyMutePolicyLocked sets both mute flags explicitly: master audible,
// slave silent. Setting rather than toggling also repairs a slave left
// unmuted by direct external mutation.
func (c *Controller) applyMutePolicyLocked() {
	master := c.handleForLocked(c.mode.MasterID())
	slave := c.handleForLocked(c.mode.MasterID().Other())
	master.SetMuted(false)
	slave.SetMuted(true)
}

// notePlaybackStarted is called by the coordinator success path when the
// master stream starts. The very first successful play of a session
// re-asserts both mute states explicitly, because neither stream's mute
// flag is trustworthy before any explicit assignment.
func (c *Controller) notePlaybackStarted(id player.ID) {
	c.mu.Lock()
	isMaster := id == c.mode.MasterID()
	if isMaster && !c.firstPlayDone {
		c.firstPlayDone = true
		c.applyMutePolicyLocked()
	}
	c.mu.Unlock()

	if isMaster {
		c.pub.stateChanged(StateChange{IsPlaying: true})
	}
}

// notePlaybackStopped mirrors notePlaybackStarted for pauses of the
// master stream.
func (c *Controller) notePlaybackStopped() {
	c.pub.stateChanged(StateChange{IsPlaying: false})
}

// MuteInvariantHolds reports whether exactly one stream is audible. It
// may be false transiently during a mode switch; tests and embedder
// debug asserts call it only in steady state.
func (c *Controller) MuteInvariantHolds() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.primary.Muted() != c.secondary.Muted()
}
