package playback

import "errors"

// ErrUnknownPlayer indicates the id is not (or no longer) registered.
var ErrUnknownPlayer = errors.New("unknown player")
