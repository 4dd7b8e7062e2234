package player

import "errors"

// Errors surfaced by stream handles. Decode and network failures are not
// retried here; whether to re-request a broken source is the loader
// collaborator's decision.
var (
	ErrUnsupportedSource = errors.New("player: unsupported source format")
	ErrDecode            = errors.New("player: media decode failed")
	ErrNetwork           = errors.New("player: media network failure")
	ErrNoSource          = errors.New("player: no source assigned")
)
