package player

import (
	"context"
	"sync"
	"time"
)

// Mock is a test double for a stream handle.
type Mock struct {
	mu sync.Mutex

	id       ID
	src      string
	position time.Duration
	duration time.Duration
	paused   bool
	muted    bool
	ready    ReadyState

	playErr error
	loadErr error

	playCalls  int
	pauseCalls int
	seekCalls  []time.Duration
	muteCalls  []bool
	loadCalls  []string

	readyCh chan ReadyState
}

// NewMock creates a new mock handle for testing. It starts paused with no
// source, like a freshly created platform stream.
func NewMock(id ID) *Mock {
	return &Mock{
		id:      id,
		paused:  true,
		readyCh: make(chan ReadyState, readyBufferSize),
	}
}

func (m *Mock) ID() ID { return m.id }

func (m *Mock) Load(src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls = append(m.loadCalls, src)
	if m.loadErr != nil {
		return m.loadErr
	}
	m.src = src
	m.setReadyLocked(Loading)
	return nil
}

func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = ""
	m.ready = Empty
	m.position = 0
	m.duration = 0
	m.paused = true
}

func (m *Mock) Source() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.src
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) SetPosition(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Mock) Play(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	m.paused = false
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCalls++
	m.paused = true
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muteCalls = append(m.muteCalls, muted)
	m.muted = muted
}

func (m *Mock) ReadyState() ReadyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

func (m *Mock) ReadyChanged() <-chan ReadyState {
	return m.readyCh
}

func (m *Mock) setReadyLocked(s ReadyState) {
	m.ready = s
	select {
	case m.readyCh <- s:
	default:
	}
}

// Test helpers

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

// AdvanceTo moves the position without recording a seek call, simulating
// normal playback progress.
func (m *Mock) AdvanceTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = pos
}

// SimulatePlaying marks the stream as playing without recording a play
// call, as if an earlier attempt had already started it.
func (m *Mock) SimulatePlaying() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
}

// SimulateReadyState advances the ready state and notifies watchers.
func (m *Mock) SimulateReadyState(s ReadyState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setReadyLocked(s)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) PauseCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pauseCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

func (m *Mock) MuteCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.muteCalls...)
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

// Verify Mock implements Handle at compile time.
var _ Handle = (*Mock)(nil)
