package playback

import (
	"testing"
	"time"
)

func TestSubscription_ChannelsAreWired(t *testing.T) {
	sub := newSubscription()

	if sub.ModeChanged == nil || sub.SyncCorrected == nil || sub.AttemptExhausted == nil ||
		sub.TrackLoading == nil || sub.TrackReady == nil || sub.StateChanged == nil ||
		sub.Error == nil || sub.Done == nil {
		t.Fatal("all event channels should be initialized")
	}
}

func TestSubscription_NonBlockingSendDropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Overfill the buffer; sends must not block.
	for i := 0; i < eventBufferSize+5; i++ {
		sub.sendSync(SyncCorrected{Drift: time.Duration(i)})
	}

	received := 0
	for {
		select {
		case <-sub.SyncCorrected:
			received++
		default:
			if received != eventBufferSize {
				t.Errorf("received %d events, want %d (overflow dropped)", received, eventBufferSize)
			}
			return
		}
	}
}

func TestSubscription_CloseSignalsDone(t *testing.T) {
	sub := newSubscription()

	sub.close()

	select {
	case <-sub.Done:
	default:
		t.Fatal("Done should be closed")
	}
}

func TestPublisher_FansOutToAllSubscribers(t *testing.T) {
	pub := newPublisher()
	a := pub.subscribe()
	b := pub.subscribe()

	pub.modeChanged(ModeChange{Mode: Presentation})

	for _, sub := range []*Subscription{a, b} {
		select {
		case e := <-sub.ModeChanged:
			if e.Mode != Presentation {
				t.Errorf("mode = %v, want Presentation", e.Mode)
			}
		default:
			t.Fatal("every subscriber should receive the event")
		}
	}
}

func TestPublisher_CloseAllSignalsEverySubscriber(t *testing.T) {
	pub := newPublisher()
	a := pub.subscribe()
	b := pub.subscribe()

	pub.closeAll()

	for _, sub := range []*Subscription{a, b} {
		select {
		case <-sub.Done:
		default:
			t.Fatal("closeAll should close every subscription")
		}
	}
}
