package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/onomono-design/duostream/player"
)

// attempt is the per-request record of one strategy chain run. The first
// strategy to resolve settles it; everything after that is discarded.
type attempt struct {
	mu     sync.Mutex
	stream player.ID
	state  AttemptState
	winner string
	done   chan struct{}
}

func newAttempt(stream player.ID) *attempt {
	return &attempt{
		stream: stream,
		state:  Attempting,
		done:   make(chan struct{}),
	}
}

// succeed settles the attempt with a winning strategy. Returns false if
// the attempt had already settled: late resolutions after a win,
// abandonment, or exhaustion are ignored.
func (a *attempt) succeed(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Attempting {
		return false
	}
	a.state = Succeeded
	a.winner = name
	close(a.done)
	return true
}

// abandon settles the attempt as cancelled.
func (a *attempt) abandon() bool {
	return a.settle(Abandoned)
}

// exhaust settles the attempt after every strategy failed.
func (a *attempt) exhaust() bool {
	return a.settle(Exhausted)
}

func (a *attempt) settle(s AttemptState) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != Attempting {
		return false
	}
	a.state = s
	close(a.done)
	return true
}

func (a *attempt) result() (AttemptState, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.winner
}

// Coordinator sequences unlock strategies to start playback of a stream,
// bounded by a per-strategy timeout, with an at-most-once success
// guarantee per attempt chain.
//
// Attempts are tracked per stream: starting a new attempt for a stream
// abandons the previous one for that stream only, so a muted slave
// resume never cancels a master attempt.
type Coordinator struct {
	mu     sync.Mutex
	active map[player.ID]*attempt

	chain   []Strategy
	timeout time.Duration

	pub *publisher
	log *logrus.Entry

	// onSuccess is invoked exactly once per successful attempt, before
	// Start returns.
	onSuccess func(stream player.ID, strategy string)
}

func newCoordinator(chain []Strategy, timeout time.Duration, pub *publisher, log *logrus.Entry) *Coordinator {
	return &Coordinator{
		active:  make(map[player.ID]*attempt),
		chain:   chain,
		timeout: timeout,
		pub:     pub,
		log:     log,
	}
}

// Start runs the strategy chain against the stream and blocks until the
// attempt settles. It returns nil on success, ErrAttemptAbandoned if a
// newer attempt or a cancellation superseded it, and an
// *AutoplayBlockedError carrying per-strategy diagnostics on exhaustion.
//
// directGesture orders the cheapest strategy first: a call arriving
// synchronously from a user input handler will almost always succeed on
// the immediate direct play, so it is tried alone before the full chain.
func (c *Coordinator) Start(ctx context.Context, h player.Handle, directGesture bool) error {
	a := c.begin(h.ID())
	defer c.end(h.ID(), a)

	order := c.chain
	if directGesture && len(order) > 0 {
		order = append([]Strategy{order[0]}, order...)
	}

	var failures []StrategyFailure
	for _, s := range order {
		won, failure := c.runStrategy(ctx, a, s, h)
		if won {
			break
		}
		if failure == nil {
			// Settled without a win: abandoned or context cancelled.
			break
		}
		c.log.WithFields(logrus.Fields{
			"stream":   h.ID(),
			"strategy": failure.Name,
		}).Debugf("unlock strategy failed: %s", failure.Reason)
		failures = append(failures, *failure)
	}

	if a.exhaust() {
		c.pub.attemptExhausted(AttemptExhausted{Stream: h.ID(), Strategies: failures})
		return &AutoplayBlockedError{Stream: h.ID(), Strategies: failures}
	}

	state, winner := a.result()
	switch state {
	case Succeeded:
		c.log.WithFields(logrus.Fields{
			"stream":   h.ID(),
			"strategy": winner,
		}).Debug("playback attempt succeeded")
		if c.onSuccess != nil {
			c.onSuccess(h.ID(), winner)
		}
		return nil
	default:
		return ErrAttemptAbandoned
	}
}

// Cancel abandons any in-flight attempt for the stream. Its eventual
// strategy outcomes are discarded.
func (c *Coordinator) Cancel(id player.ID) {
	c.mu.Lock()
	a := c.active[id]
	delete(c.active, id)
	c.mu.Unlock()
	if a != nil {
		a.abandon()
	}
}

// CancelAll abandons every in-flight attempt. Used on track loads, which
// invalidate attempts for both of the previous track's streams.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	attempts := c.active
	c.active = make(map[player.ID]*attempt)
	c.mu.Unlock()
	for _, a := range attempts {
		a.abandon()
	}
}

// begin registers a new attempt for the stream, abandoning any prior one.
func (c *Coordinator) begin(id player.ID) *attempt {
	c.mu.Lock()
	prev := c.active[id]
	a := newAttempt(id)
	c.active[id] = a
	c.mu.Unlock()
	if prev != nil {
		prev.abandon()
	}
	return a
}

func (c *Coordinator) end(id player.ID, a *attempt) {
	c.mu.Lock()
	if c.active[id] == a {
		delete(c.active, id)
	}
	c.mu.Unlock()
}

// runStrategy executes one strategy with a bounded timeout. A strategy
// that neither resolves nor rejects within the timeout is treated as a
// failure and left running; if it resolves later it may still settle the
// attempt (first resolver wins), which the select on a.done observes.
func (c *Coordinator) runStrategy(ctx context.Context, a *attempt, s Strategy, h player.Handle) (won bool, failure *StrategyFailure) {
	errCh := make(chan error, 1)
	go func() {
		err := s.Run(ctx, h)
		if err == nil {
			a.succeed(s.Name)
			return
		}
		errCh <- err
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-a.done:
		// Settled: either this strategy (or a late earlier one) won, or
		// the attempt was abandoned. The caller inspects the result.
		state, _ := a.result()
		return state == Succeeded, nil
	case err := <-errCh:
		if errors.Is(err, ErrPermissionDenied) {
			// Permission refusals at the device boundary degrade
			// capability; the rest of the chain still runs.
			c.log.WithFields(logrus.Fields{
				"stream":   h.ID(),
				"strategy": s.Name,
			}).Warn("device permission denied, continuing with remaining strategies")
		}
		return false, &StrategyFailure{Name: s.Name, Reason: err.Error()}
	case <-timer.C:
		return false, &StrategyFailure{Name: s.Name, Reason: fmt.Sprintf("timed out after %s", c.timeout)}
	case <-ctx.Done():
		a.abandon()
		return false, nil
	}
}
