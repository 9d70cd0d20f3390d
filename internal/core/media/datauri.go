// Package media handles the base64 data URIs the compose flow submits and
// normalizes upload images before they are forwarded to the origin.
package media

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Kind distinguishes the two media families a post may carry.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// DataURI is a decoded `data:` URI.
type DataURI struct {
	MIMEType string
	Data     []byte
}

// Kind maps the MIME type to a media kind.
func (d DataURI) Kind() (Kind, error) {
	switch {
	case strings.HasPrefix(d.MIMEType, "image/"):
		return KindImage, nil
	case strings.HasPrefix(d.MIMEType, "video/"):
		return KindVideo, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, d.MIMEType)
	}
}

// Encode re-serializes the payload as a base64 data URI.
func (d DataURI) Encode() string {
	return "data:" + d.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}

// ParseDataURI decodes a `data:<mime>;base64,<payload>` string, enforcing the
// size cap on the decoded payload.
func ParseDataURI(uri string, maxBytes int64) (DataURI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidDataURI)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURI)
	}

	mimeType, found := strings.CutSuffix(meta, ";base64")
	if !found {
		return DataURI{}, fmt.Errorf("%w: only base64 payloads are accepted", ErrInvalidDataURI)
	}
	if mimeType == "" {
		return DataURI{}, fmt.Errorf("%w: missing media type", ErrInvalidDataURI)
	}

	// Cheap pre-check before decoding: base64 inflates by 4/3.
	if maxBytes > 0 && int64(len(payload)) > maxBytes*4/3+4 {
		return DataURI{}, fmt.Errorf("%w: payload exceeds %d bytes", ErrMediaTooLarge, maxBytes)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURI{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return DataURI{}, fmt.Errorf("%w: payload exceeds %d bytes", ErrMediaTooLarge, maxBytes)
	}

	return DataURI{MIMEType: mimeType, Data: data}, nil
}
