package media

import "errors"

var (
	// ErrInvalidDataURI is returned when the submitted media is not a
	// well-formed base64 data URI.
	ErrInvalidDataURI = errors.New("invalid data URI")

	// ErrUnsupportedMedia is returned for media types that are neither image
	// nor video.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrMediaTooLarge is returned when the decoded payload exceeds the
	// configured size cap.
	ErrMediaTooLarge = errors.New("media exceeds size limit")

	// ErrDecodeFailed is returned when an image payload cannot be decoded.
	ErrDecodeFailed = errors.New("image decode failed")
)
