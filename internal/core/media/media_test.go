package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	d, err := ParseDataURI("data:image/png;base64,"+payload, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", d.MIMEType)
	assert.Equal(t, []byte("hello"), d.Data)

	kind, err := d.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindImage, kind)
}

func TestParseDataURIVideoKind(t *testing.T) {
	d, err := ParseDataURI("data:video/mp4;base64,"+base64.StdEncoding.EncodeToString([]byte("mp4")), 0)
	require.NoError(t, err)

	kind, err := d.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindVideo, kind)
}

func TestParseDataURIRejectsMalformedInput(t *testing.T) {
	cases := []string{
		"http://not-a-data-uri",
		"data:image/png,rawpayload",          // not base64
		"data:;base64,QQ==",                  // missing media type
		"data:image/png;base64,not-base64!!", // undecodable payload
	}
	for _, uri := range cases {
		_, err := ParseDataURI(uri, 0)
		assert.ErrorIs(t, err, ErrInvalidDataURI, "uri %q", uri)
	}
}

func TestParseDataURIEnforcesSizeCap(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), 64))
	_, err := ParseDataURI("data:image/png;base64,"+payload, 16)
	assert.ErrorIs(t, err, ErrMediaTooLarge)
}

func TestUnsupportedMediaKind(t *testing.T) {
	d := DataURI{MIMEType: "application/pdf"}
	_, err := d.Kind()
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestEncodeRoundTrip(t *testing.T) {
	d := DataURI{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}}
	parsed, err := ParseDataURI(d.Encode(), 0)
	require.NoError(t, err)
	assert.Equal(t, d, parsed)
}

func TestNormalizeImageDownscalesLargeUploads(t *testing.T) {
	d := DataURI{MIMEType: "image/png", Data: encodePNG(t, 2400, 1200)}

	out, err := NormalizeImage(d)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MIMEType)

	img, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxUploadEdge, img.Bounds().Dx())
	assert.Equal(t, MaxUploadEdge/2, img.Bounds().Dy(), "aspect ratio preserved")
}

func TestNormalizeImageKeepsSmallDimensions(t *testing.T) {
	d := DataURI{MIMEType: "image/png", Data: encodePNG(t, 320, 240)}

	out, err := NormalizeImage(d)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out.Data))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, err := NormalizeImage(DataURI{MIMEType: "image/png", Data: []byte("not an image")})
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
