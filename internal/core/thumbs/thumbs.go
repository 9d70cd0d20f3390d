// Package thumbs produces the square preview images the profile grid shows
// for feed posts. Source media lives behind arbitrary origin URLs, so the
// pipeline fetches with a size cap, downscales to a preset, and keeps the
// processed bytes in a bounded in-memory cache.
package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/webp" // register WebP decoder
)

var (
	// ErrInvalidSource indicates the media URL is not a fetchable http(s) URL.
	ErrInvalidSource = errors.New("invalid thumbnail source URL")

	// ErrInvalidPreset indicates an unknown preset name.
	ErrInvalidPreset = errors.New("invalid thumbnail preset")

	// ErrFetchFailed indicates the source media could not be retrieved.
	ErrFetchFailed = errors.New("failed to fetch source media")

	// ErrSourceTooLarge indicates the source exceeds the fetch size cap.
	ErrSourceTooLarge = errors.New("source media exceeds size limit")

	// ErrProcessingFailed indicates the source could not be decoded or resized.
	ErrProcessingFailed = errors.New("thumbnail processing failed")
)

// Preset is a named output geometry. All presets are cover-cropped squares,
// matching the profile grid cells.
type Preset struct {
	Name string
	Edge int
}

var presets = map[string]Preset{
	"grid":  {Name: "grid", Edge: 320},
	"cover": {Name: "cover", Edge: 640},
}

// LookupPreset resolves a preset by name.
func LookupPreset(name string) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrInvalidPreset, name)
	}
	return p, nil
}

const (
	defaultMaxSourceBytes = 10 * 1024 * 1024
	thumbJPEGQuality      = 80

	// bypassHeader mirrors the origin client: media URLs point at the same
	// tunnel host and hit the same interstitial without it.
	bypassHeader = "ngrok-skip-browser-warning"
)

// Service fetches, resizes and caches thumbnails.
type Service struct {
	http     *http.Client
	cache    *lru.Cache[string, []byte]
	logger   *slog.Logger
	maxBytes int64
}

// NewService creates a thumbnail service. cacheSize is the number of processed
// thumbnails kept in memory; maxSourceBytes caps a single source fetch (0 uses
// the 10MB default).
func NewService(cacheSize int, maxSourceBytes int64, timeout time.Duration, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSourceBytes <= 0 {
		maxSourceBytes = defaultMaxSourceBytes
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating thumbnail cache: %w", err)
	}

	return &Service{
		http:     &http.Client{Timeout: timeout},
		cache:    cache,
		logger:   logger,
		maxBytes: maxSourceBytes,
	}, nil
}

// Thumbnail returns JPEG bytes for the source URL at the given preset,
// serving from cache when the same media was processed before.
func (s *Service) Thumbnail(ctx context.Context, sourceURL, presetName string) ([]byte, error) {
	preset, err := LookupPreset(presetName)
	if err != nil {
		return nil, err
	}
	if err := validateSource(sourceURL); err != nil {
		return nil, err
	}

	key := preset.Name + "|" + sourceURL
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	raw, err := s.fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	processed, err := process(raw, preset)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, processed)
	s.logger.Debug("thumbnail processed", "source", sourceURL, "preset", preset.Name, "bytes", len(processed))
	return processed, nil
}

func validateSource(sourceURL string) error {
	u, err := url.Parse(sourceURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSource, sourceURL)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set(bypassHeader, "true")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}
	if resp.ContentLength > 0 && resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: content length %d", ErrSourceTooLarge, resp.ContentLength)
	}

	// Read one byte past the cap to detect oversized bodies with a missing
	// or dishonest Content-Length.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrSourceTooLarge, s.maxBytes)
	}

	return data, nil
}

func process(data []byte, preset Preset) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}

	// Cover crop: fill the square, cropping overflow around the center.
	resized := imaging.Fill(img, preset.Edge, preset.Edge, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		return nil, fmt.Errorf("%w: encoding: %v", ErrProcessingFailed, err)
	}
	return buf.Bytes(), nil
}
