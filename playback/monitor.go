package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onomono-design/duostream/player"
)

// SyncPolicy carries the monitor's tuning. Values come from the config
// package; the zero value is not usable.
type SyncPolicy struct {
	DriftThreshold   time.Duration
	PollInterval     time.Duration
	EndOfStreamGuard time.Duration
}

// Monitor periodically measures and corrects positional drift between
// the master and slave streams and mirrors the master's play/pause state
// onto the slave.
//
// Ticks never overlap each other's correction logic and re-derive the
// desired slave state from current positions every time, so a correction
// issued twice is harmless and a missed mirror self-heals on the next
// tick.
type Monitor struct {
	ctrl   *Controller
	coord  *Coordinator
	policy SyncPolicy
	pub    *publisher
	log    *logrus.Entry

	// seeking suppresses correction while the scrubbing collaborator
	// holds the seek flag; skipOnce suppresses exactly one tick after a
	// direct seek wrote both positions.
	seeking  atomic.Bool
	skipOnce atomic.Bool

	stop     chan struct{}
	stopOnce sync.Once
}

func newMonitor(ctrl *Controller, coord *Coordinator, policy SyncPolicy, pub *publisher, log *logrus.Entry) *Monitor {
	return &Monitor{
		ctrl:   ctrl,
		coord:  coord,
		policy: policy,
		pub:    pub,
		log:    log,
		stop:   make(chan struct{}),
	}
}

// Start runs the tick loop until Stop.
func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.policy.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.tick(context.Background())
			case <-m.stop:
				return
			}
		}
	}()
}

// Stop halts the tick loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// SetSeeking sets or clears the external scrubbing flag.
func (m *Monitor) SetSeeking(seeking bool) {
	m.seeking.Store(seeking)
}

// SuppressOnce skips drift correction for the next tick, used right
// after a direct seek wrote both streams' positions.
func (m *Monitor) SuppressOnce() {
	m.skipOnce.Store(true)
}

func (m *Monitor) tick(ctx context.Context) {
	if m.seeking.Load() {
		return
	}
	if m.skipOnce.CompareAndSwap(true, false) {
		return
	}

	master := m.ctrl.Master()
	slave := m.ctrl.Slave()

	// Nothing to follow when the slave has no stream.
	if slave.ReadyState() == player.Empty {
		return
	}
	if master.Paused() && slave.Paused() {
		return
	}

	m.correctDrift(master, slave)
	m.mirrorPlayState(ctx, master, slave)
}

func (m *Monitor) correctDrift(master, slave player.Handle) {
	masterPos := master.Position()
	slavePos := slave.Position()
	drift := masterPos - slavePos
	if drift < 0 {
		drift = -drift
	}
	if drift <= m.policy.DriftThreshold {
		return
	}

	// The slave may be shorter than the master while it is still
	// loading or transcoding; never seek it past its guarded end.
	// Correction is deferred, not forced.
	if master.ReadyState().AtLeast(player.CanPlay) {
		if limit := master.Duration() - m.policy.EndOfStreamGuard; masterPos > limit {
			err := &DriftError{
				Drift:          drift,
				Target:         masterPos,
				MasterDuration: master.Duration(),
			}
			m.log.WithField("drift", drift).Warn(err.Error())
			m.pub.errorEvent(ErrorEvent{Operation: "sync", Err: err})
			return
		}
	}

	slave.SetPosition(masterPos)
	m.log.WithFields(logrus.Fields{
		"drift":  drift,
		"target": masterPos,
	}).Debug("drift corrected")
	m.pub.syncCorrected(SyncCorrected{Drift: drift})
}

func (m *Monitor) mirrorPlayState(ctx context.Context, master, slave player.Handle) {
	switch {
	case !master.Paused() && slave.Paused():
		// The slave is muted, so starting it produces no audible change
		// and needs no user gesture. A rejected resume is logged and
		// retried by a later tick.
		go func() {
			if err := m.coord.Start(ctx, slave, false); err != nil {
				m.log.WithField("stream", slave.ID()).
					Warnf("slave resume failed: %v", err)
				m.pub.errorEvent(ErrorEvent{Operation: "resume", Err: err})
			}
		}()
	case master.Paused() && !slave.Paused():
		slave.Pause()
	}
}
