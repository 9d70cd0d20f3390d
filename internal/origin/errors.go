package origin

import "errors"

var (
	// ErrOriginUnavailable indicates the origin could not be reached or
	// answered with a non-2xx status.
	ErrOriginUnavailable = errors.New("origin unavailable")

	// ErrBadPayload indicates the origin answered 2xx but the body was not
	// usable JSON (wrong content type or malformed document).
	ErrBadPayload = errors.New("malformed origin payload")
)
