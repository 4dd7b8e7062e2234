package playback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onomono-design/duostream/player"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func failing(name string) Strategy {
	return Strategy{Name: name, Run: func(context.Context, player.Handle) error {
		return errors.New("rejected")
	}}
}

func succeedingAfter(name string, d time.Duration) Strategy {
	return Strategy{Name: name, Run: func(ctx context.Context, h player.Handle) error {
		time.Sleep(d)
		return h.Play(ctx)
	}}
}

func TestCoordinator_FirstStrategySucceeds(t *testing.T) {
	h := player.NewMock(player.Primary)
	coord := newCoordinator(DefaultStrategies(NopPlatform{}), 100*time.Millisecond, newPublisher(), testLogger())

	var successes atomic.Int32
	coord.onSuccess = func(player.ID, string) { successes.Add(1) }

	err := coord.Start(context.Background(), h, false)

	require.NoError(t, err)
	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, 1, h.PlayCalls())
	assert.False(t, h.Paused())
}

func TestCoordinator_AtMostOneSuccess_LateResolutionRace(t *testing.T) {
	h := player.NewMock(player.Primary)
	// direct-play outlives the per-strategy timeout but resolves before
	// audio-context-unlock: first to resolve must win, exactly once.
	chain := []Strategy{
		succeedingAfter(StrategyDirectPlay, 60*time.Millisecond),
		succeedingAfter(StrategyAudioContext, 150*time.Millisecond),
	}
	coord := newCoordinator(chain, 30*time.Millisecond, newPublisher(), testLogger())

	var successes atomic.Int32
	var winner atomic.Value
	coord.onSuccess = func(_ player.ID, strategy string) {
		successes.Add(1)
		winner.Store(strategy)
	}

	err := coord.Start(context.Background(), h, false)
	require.NoError(t, err)

	// Let the slower strategy resolve too; it must be discarded.
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, StrategyDirectPlay, winner.Load())
}

func TestCoordinator_Exhaustion_ReportsAllStrategiesInOrder(t *testing.T) {
	h := player.NewMock(player.Primary)
	h.SetPlayError(errors.New("autoplay blocked"))
	pub := newPublisher()
	sub := pub.subscribe()
	coord := newCoordinator(DefaultStrategies(NopPlatform{}), 100*time.Millisecond, pub, testLogger())

	err := coord.Start(context.Background(), h, false)

	var blocked *AutoplayBlockedError
	require.ErrorAs(t, err, &blocked)
	require.Len(t, blocked.Strategies, 6)

	want := []string{
		StrategyDirectPlay,
		StrategyPlatformUnlock,
		StrategyDirectPlayRetry,
		StrategyAudioContext,
		StrategyGesture,
		StrategySilentBuffer,
	}
	for i, f := range blocked.Strategies {
		assert.Equal(t, want[i], f.Name, "diagnostic %d", i)
		assert.NotEmpty(t, f.Reason)
	}

	select {
	case e := <-sub.AttemptExhausted:
		assert.Len(t, e.Strategies, 6)
		assert.Equal(t, player.Primary, e.Stream)
	default:
		t.Fatal("expected an attempt-exhausted event")
	}
}

func TestCoordinator_DirectGesture_TriesDirectPlayFirstAndAlone(t *testing.T) {
	h := player.NewMock(player.Primary)

	var order []string
	record := func(name string, err error) Strategy {
		return Strategy{Name: name, Run: func(ctx context.Context, h player.Handle) error {
			order = append(order, name)
			if err != nil {
				return err
			}
			return h.Play(ctx)
		}}
	}

	// The gesture fast path fails once, then the full chain runs.
	calls := 0
	chain := []Strategy{
		{Name: StrategyDirectPlay, Run: func(ctx context.Context, h player.Handle) error {
			order = append(order, StrategyDirectPlay)
			calls++
			if calls == 1 {
				return errors.New("gesture expired")
			}
			return h.Play(ctx)
		}},
		record(StrategyPlatformUnlock, errors.New("no-op")),
	}
	coord := newCoordinator(chain, 100*time.Millisecond, newPublisher(), testLogger())

	err := coord.Start(context.Background(), h, true)

	require.NoError(t, err)
	assert.Equal(t, []string{StrategyDirectPlay, StrategyDirectPlay}, order)
}

func TestCoordinator_StrategyTimeoutTreatedAsFailure(t *testing.T) {
	h := player.NewMock(player.Primary)
	h.SetPlayError(errors.New("blocked"))
	chain := []Strategy{
		{Name: "hung", Run: func(context.Context, player.Handle) error {
			time.Sleep(time.Second)
			return errors.New("too late")
		}},
		failing("fallback"),
	}
	coord := newCoordinator(chain, 20*time.Millisecond, newPublisher(), testLogger())

	err := coord.Start(context.Background(), h, false)

	var blocked *AutoplayBlockedError
	require.ErrorAs(t, err, &blocked)
	require.Len(t, blocked.Strategies, 2)
	assert.Contains(t, blocked.Strategies[0].Reason, "timed out")
}

func TestCoordinator_PermissionDeniedIsNonFatal(t *testing.T) {
	h := player.NewMock(player.Primary)
	chain := []Strategy{
		{Name: StrategyGesture, Run: func(context.Context, player.Handle) error {
			return fmt.Errorf("%w: no user activation", ErrPermissionDenied)
		}},
		succeedingAfter(StrategySilentBuffer, 0),
	}
	coord := newCoordinator(chain, 100*time.Millisecond, newPublisher(), testLogger())

	err := coord.Start(context.Background(), h, false)

	require.NoError(t, err)
	assert.Equal(t, 1, h.PlayCalls())
	assert.False(t, h.Paused())
}

func TestCoordinator_Reentrancy_NewAttemptAbandonsPrior(t *testing.T) {
	h := player.NewMock(player.Primary)
	release := make(chan struct{})
	chain := []Strategy{
		{Name: "blocking", Run: func(ctx context.Context, h player.Handle) error {
			<-release
			return h.Play(ctx)
		}},
	}
	coord := newCoordinator(chain, time.Second, newPublisher(), testLogger())

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- coord.Start(context.Background(), h, false)
	}()

	// Let the first attempt register before superseding it.
	assert.Eventually(t, func() bool {
		coord.mu.Lock()
		defer coord.mu.Unlock()
		return coord.active[player.Primary] != nil
	}, time.Second, 5*time.Millisecond)

	secondDone := make(chan error, 1)
	go func() {
		secondDone <- coord.Start(context.Background(), h, false)
	}()

	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, ErrAttemptAbandoned)
	case <-time.After(time.Second):
		t.Fatal("first attempt did not settle after being superseded")
	}

	close(release)
	select {
	case err := <-secondDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second attempt did not settle")
	}
}

func TestCoordinator_CancelIsPerStream(t *testing.T) {
	primary := player.NewMock(player.Primary)
	secondary := player.NewMock(player.Secondary)
	release := make(chan struct{})
	chain := []Strategy{
		{Name: "blocking", Run: func(ctx context.Context, h player.Handle) error {
			<-release
			return h.Play(ctx)
		}},
	}
	coord := newCoordinator(chain, time.Second, newPublisher(), testLogger())

	primaryDone := make(chan error, 1)
	go func() { primaryDone <- coord.Start(context.Background(), primary, false) }()
	secondaryDone := make(chan error, 1)
	go func() { secondaryDone <- coord.Start(context.Background(), secondary, false) }()

	assert.Eventually(t, func() bool {
		coord.mu.Lock()
		defer coord.mu.Unlock()
		return len(coord.active) == 2
	}, time.Second, 5*time.Millisecond)

	// Cancelling the secondary must not touch the primary's attempt.
	coord.Cancel(player.Secondary)

	select {
	case err := <-secondaryDone:
		assert.ErrorIs(t, err, ErrAttemptAbandoned)
	case <-time.After(time.Second):
		t.Fatal("secondary attempt did not settle after cancel")
	}

	close(release)
	select {
	case err := <-primaryDone:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("primary attempt did not settle")
	}
}

func TestCoordinator_LateSuccessAfterExhaustionIsIgnored(t *testing.T) {
	h := player.NewMock(player.Primary)
	chain := []Strategy{
		{Name: "slow", Run: func(ctx context.Context, h player.Handle) error {
			time.Sleep(80 * time.Millisecond)
			return h.Play(ctx)
		}},
	}
	coord := newCoordinator(chain, 20*time.Millisecond, newPublisher(), testLogger())

	var successes atomic.Int32
	coord.onSuccess = func(player.ID, string) { successes.Add(1) }

	err := coord.Start(context.Background(), h, false)

	var blocked *AutoplayBlockedError
	require.ErrorAs(t, err, &blocked)

	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, int32(0), successes.Load())
}
