package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxUploadEdge is the longest edge an upload image keeps after
	// normalization. Phone cameras routinely produce 4000px frames the feed
	// never needs.
	MaxUploadEdge = 1600

	// uploadJPEGQuality is the re-encode quality for normalized uploads.
	uploadJPEGQuality = 85
)

// NormalizeImage decodes an upload image (JPEG, PNG or WebP), downscales it so
// its longest edge is at most MaxUploadEdge, and re-encodes it as JPEG. Images
// already within bounds are still re-encoded, which strips EXIF payloads as a
// side effect. Video payloads are not touched by this path.
func NormalizeImage(d DataURI) (DataURI, error) {
	img, format, err := image.Decode(bytes.NewReader(d.Data))
	if err != nil {
		return DataURI{}, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	if format != "jpeg" && format != "png" && format != "webp" {
		return DataURI{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, format)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxUploadEdge || bounds.Dy() > MaxUploadEdge {
		// Fit preserves aspect ratio within the square bound.
		img = imaging.Fit(img, MaxUploadEdge, MaxUploadEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: uploadJPEGQuality}); err != nil {
		return DataURI{}, fmt.Errorf("encoding normalized image: %w", err)
	}

	return DataURI{MIMEType: "image/jpeg", Data: buf.Bytes()}, nil
}
