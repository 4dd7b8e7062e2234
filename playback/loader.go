package playback

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onomono-design/duostream/player"
)

// preloadPollInterval backs up the ready-change channels: the watcher
// re-reads both streams' current ready state on this cadence, so a
// notification lost to a superseded watcher is recovered.
const preloadPollInterval = 200 * time.Millisecond

// Sequencer orders track loads: it resets both streams, sequences the
// secondary load behind the primary on resource-constrained devices, and
// hands off to the mode controller and the attempt coordinator.
type Sequencer struct {
	mu sync.Mutex

	primary   player.Handle
	secondary player.Handle
	ctrl      *Controller
	coord     *Coordinator
	pub       *publisher
	log       *logrus.Entry

	// mobile serializes the secondary load behind the primary's
	// CanPlayThrough to avoid network contention.
	mobile bool
	// gesture reports whether the current call originates from a direct
	// user interaction; supplied by the device collaborator.
	gesture func() bool

	current            Track
	audioPreloaded     bool
	secondaryPreloaded bool

	watchDone chan struct{} // closed when the current load is superseded
}

func newSequencer(primary, secondary player.Handle, ctrl *Controller, coord *Coordinator,
	pub *publisher, log *logrus.Entry, mobile bool, gesture func() bool,
) *Sequencer {
	if gesture == nil {
		gesture = func() bool { return false }
	}
	return &Sequencer{
		primary:   primary,
		secondary: secondary,
		ctrl:      ctrl,
		coord:     coord,
		pub:       pub,
		log:       log,
		mobile:    mobile,
		gesture:   gesture,
	}
}

// LoadTrack resets both streams onto the new track's sources and starts
// loading. With autoPlay the coordinator is invoked on the master stream;
// without it the coordinator is never called, regardless of prior playing
// state.
func (s *Sequencer) LoadTrack(ctx context.Context, t Track, autoPlay bool) error {
	s.mu.Lock()
	if s.watchDone != nil {
		close(s.watchDone)
	}
	watchDone := make(chan struct{})
	s.watchDone = watchDone
	s.current = t
	s.audioPreloaded = false
	s.secondaryPreloaded = false
	s.mu.Unlock()

	// Attempts for the previous track's streams are void now.
	s.coord.CancelAll()

	s.primary.Pause()
	s.secondary.Pause()

	s.log.WithField("track", t.Title).Info("loading track")
	s.pub.trackLoading(TrackLoading{Title: t.Title})

	if err := s.primary.Load(t.PrimarySrc); err != nil {
		s.pub.errorEvent(ErrorEvent{Operation: "load", Err: err})
		return err
	}

	hasSecondary := t.HasSecondary()
	if !hasSecondary {
		s.secondary.Clear()
	}
	s.ctrl.SetTrack(hasSecondary)

	if hasSecondary && !s.mobile {
		if err := s.secondary.Load(t.SecondarySrc); err != nil {
			// The primary can still play; the mode controller already
			// forced a consistent master. Surfaced, not retried.
			s.log.WithField("src", t.SecondarySrc).Warnf("secondary load failed: %v", err)
			s.pub.errorEvent(ErrorEvent{Operation: "load", Err: err})
		}
	}

	go s.watchPreload(ctx, watchDone, t, autoPlay, hasSecondary)

	if autoPlay {
		master := s.ctrl.Master()
		direct := s.gesture()
		go func() {
			if err := s.coord.Start(ctx, master, direct); err != nil {
				s.log.WithField("stream", master.ID()).
					Debugf("initial play attempt did not start: %v", err)
			}
		}()
	}
	return nil
}

// CurrentTrack returns the most recently loaded track.
func (s *Sequencer) CurrentTrack() Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// IsAudioPreloaded reports whether the primary stream has reached
// CanPlayThrough for the current track.
func (s *Sequencer) IsAudioPreloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audioPreloaded
}

// IsSecondaryPreloaded reports the same for the secondary stream.
func (s *Sequencer) IsSecondaryPreloaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondaryPreloaded
}

func (s *Sequencer) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchDone != nil {
		close(s.watchDone)
		s.watchDone = nil
	}
}

// watchPreload tracks both streams toward CanPlayThrough. It emits
// track-ready when the master gets there, kicks the deferred secondary
// load on mobile, and re-issues one coordinator call if autoplay had not
// taken by ready time (the network outran the initial attempt window).
func (s *Sequencer) watchPreload(ctx context.Context, done <-chan struct{}, t Track, autoPlay, hasSecondary bool) {
	ticker := time.NewTicker(preloadPollInterval)
	defer ticker.Stop()

	readyEmitted := false
	secondaryRequested := !hasSecondary || !s.mobile

	for {
		if s.primary.ReadyState().AtLeast(player.CanPlayThrough) {
			s.mu.Lock()
			s.audioPreloaded = true
			s.mu.Unlock()

			if !secondaryRequested {
				secondaryRequested = true
				if err := s.secondary.Load(t.SecondarySrc); err != nil {
					s.log.WithField("src", t.SecondarySrc).Warnf("secondary load failed: %v", err)
					s.pub.errorEvent(ErrorEvent{Operation: "load", Err: err})
				}
			}
		}
		if hasSecondary && s.secondary.ReadyState().AtLeast(player.CanPlayThrough) {
			s.mu.Lock()
			s.secondaryPreloaded = true
			s.mu.Unlock()
		}

		if !readyEmitted {
			master := s.ctrl.Master()
			if master.ReadyState().AtLeast(player.CanPlayThrough) {
				readyEmitted = true
				s.pub.trackReady(TrackReady{Title: t.Title})
				if autoPlay && master.Paused() {
					go func() {
						if err := s.coord.Start(ctx, master, false); err != nil {
							s.log.WithField("stream", master.ID()).
								Debugf("ready-time play attempt did not start: %v", err)
						}
					}()
				}
			}
		}

		if readyEmitted && s.doneLoading(hasSecondary) {
			return
		}

		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-s.primary.ReadyChanged():
		case <-s.secondary.ReadyChanged():
		case <-ticker.C:
		}
	}
}

func (s *Sequencer) doneLoading(hasSecondary bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.audioPreloaded {
		return false
	}
	return !hasSecondary || s.secondaryPreloaded
}
