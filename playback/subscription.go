package playback

import "sync"

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	ModeChanged      <-chan ModeChange
	SyncCorrected    <-chan SyncCorrected
	AttemptExhausted <-chan AttemptExhausted
	TrackLoading     <-chan TrackLoading
	TrackReady       <-chan TrackReady
	StateChanged     <-chan StateChange
	Error            <-chan ErrorEvent
	Done             <-chan struct{}

	// Internal write channels
	modeCh      chan ModeChange
	syncCh      chan SyncCorrected
	exhaustedCh chan AttemptExhausted
	loadingCh   chan TrackLoading
	readyCh     chan TrackReady
	stateCh     chan StateChange
	errorCh     chan ErrorEvent
	doneCh      chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		modeCh:      make(chan ModeChange, eventBufferSize),
		syncCh:      make(chan SyncCorrected, eventBufferSize),
		exhaustedCh: make(chan AttemptExhausted, eventBufferSize),
		loadingCh:   make(chan TrackLoading, eventBufferSize),
		readyCh:     make(chan TrackReady, eventBufferSize),
		stateCh:     make(chan StateChange, eventBufferSize),
		errorCh:     make(chan ErrorEvent, eventBufferSize),
		doneCh:      make(chan struct{}),
	}
	s.ModeChanged = s.modeCh
	s.SyncCorrected = s.syncCh
	s.AttemptExhausted = s.exhaustedCh
	s.TrackLoading = s.loadingCh
	s.TrackReady = s.readyCh
	s.StateChanged = s.stateCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// Sends are non-blocking; events are dropped if a subscriber's buffer is
// full. The emitter never waits on a consumer.

func (s *Subscription) sendMode(e ModeChange) {
	select {
	case s.modeCh <- e:
	default:
	}
}

func (s *Subscription) sendSync(e SyncCorrected) {
	select {
	case s.syncCh <- e:
	default:
	}
}

func (s *Subscription) sendExhausted(e AttemptExhausted) {
	select {
	case s.exhaustedCh <- e:
	default:
	}
}

func (s *Subscription) sendLoading(e TrackLoading) {
	select {
	case s.loadingCh <- e:
	default:
	}
}

func (s *Subscription) sendReady(e TrackReady) {
	select {
	case s.readyCh <- e:
	default:
	}
}

func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
	}
}

func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}

// publisher fans events out to every live subscription.
type publisher struct {
	mu   sync.RWMutex
	subs []*Subscription
}

func newPublisher() *publisher {
	return &publisher{}
}

func (p *publisher) subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()
	sub := newSubscription()
	p.subs = append(p.subs, sub)
	return sub
}

func (p *publisher) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sub := range p.subs {
		sub.close()
	}
	p.subs = nil
}

func (p *publisher) each(fn func(*Subscription)) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		fn(sub)
	}
}

func (p *publisher) modeChanged(e ModeChange) {
	p.each(func(s *Subscription) { s.sendMode(e) })
}

func (p *publisher) syncCorrected(e SyncCorrected) {
	p.each(func(s *Subscription) { s.sendSync(e) })
}

func (p *publisher) attemptExhausted(e AttemptExhausted) {
	p.each(func(s *Subscription) { s.sendExhausted(e) })
}

func (p *publisher) trackLoading(e TrackLoading) {
	p.each(func(s *Subscription) { s.sendLoading(e) })
}

func (p *publisher) trackReady(e TrackReady) {
	p.each(func(s *Subscription) { s.sendReady(e) })
}

func (p *publisher) stateChanged(e StateChange) {
	p.each(func(s *Subscription) { s.sendState(e) })
}

func (p *publisher) errorEvent(e ErrorEvent) {
	p.each(func(s *Subscription) { s.sendError(e) })
}
