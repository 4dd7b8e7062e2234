package player

// ID identifies one of the two streams. Identity is stable for the life
// of the process; the master/slave role assignment lives in the playback
// package and moves between streams as the mode changes.
type ID int

const (
	Primary ID = iota
	Secondary
)

// String returns the stream name for logging.
func (id ID) String() string {
	switch id {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return "unknown"
	}
}

// Other returns the id of the opposite stream.
func (id ID) Other() ID {
	if id == Primary {
		return Secondary
	}
	return Primary
}

// ReadyState describes how much of a stream's data is available.
//
// Valid progression on a successful load:
//
//	Empty → Loading → CanPlay → CanPlayThrough
//
// Clear() resets any state back to Empty. A handle never moves backwards
// otherwise. Duration() is only meaningful once the state is CanPlay or
// better; callers gate on AtLeast(CanPlay) instead of checking for a
// sentinel duration value.
type ReadyState int

const (
	Empty ReadyState = iota
	Loading
	CanPlay
	CanPlayThrough
)

// String returns the ready-state name for logging.
func (s ReadyState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case CanPlay:
		return "can-play"
	case CanPlayThrough:
		return "can-play-through"
	default:
		return "unknown"
	}
}

// AtLeast reports whether the state has reached min.
func (s ReadyState) AtLeast(min ReadyState) bool {
	return s >= min
}
