package vision

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/jpeg"
	"log"
	"strings"
	"time"

	_ "image/png" // register PNG decoding

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoding

	"github.com/shelfwatch/backend/internal/domain"
)

// Config holds extraction settings.
type Config struct {
	// MaxDimension bounds the longer image side before recognition.
	// Downscaling trades a little precision for bounded recognition
	// cost and payload size.
	MaxDimension int
	// Workers caps concurrent recognition calls.
	Workers int
	// Timeout bounds one recognition call.
	Timeout time.Duration
	// CacheTTL is how long extraction results are kept, keyed by image
	// checksum.
	CacheTTL time.Duration
}

// Extractor turns photo bytes into a short, deduplicated list of text
// lines. Recognition failures degrade to an empty result: one bad
// image must not fail a request or abort a batch.
type Extractor struct {
	recognizer domain.Recognizer
	cache      domain.CacheRepository
	sem        chan struct{}
	config     Config
}

// NewExtractor creates an extractor. cache may be nil to disable
// result caching.
func NewExtractor(recognizer domain.Recognizer, cache domain.CacheRepository, config Config) *Extractor {
	if config.MaxDimension <= 0 {
		config.MaxDimension = 1280
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 20 * time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 24 * time.Hour
	}
	return &Extractor{
		recognizer: recognizer,
		cache:      cache,
		sem:        make(chan struct{}, config.Workers),
		config:     config,
	}
}

// ExtractLines recognizes text in the image and returns trimmed,
// blank-free lines deduplicated case-insensitively in first-seen
// order. The only returned error is context cancellation while
// waiting for a worker slot.
func (e *Extractor) ExtractLines(ctx context.Context, data []byte) ([]string, error) {
	sum := sha256.Sum256(data)
	cacheKey := "ocr:" + hex.EncodeToString(sum[:])

	if e.cache != nil {
		if cached, err := e.cache.Get(ctx, cacheKey); err == nil {
			if lines, ok := cached.([]string); ok {
				return lines, nil
			}
		}
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	payload, ok := e.preparePayload(data)
	if !ok {
		return []string{}, nil
	}

	recognizeCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()
	text, err := e.recognizer.RecognizeText(recognizeCtx, payload)
	if err != nil {
		log.Printf("[VISION] Recognition failed, returning empty result: %v", err)
		return []string{}, nil
	}

	lines := CleanLines(strings.Split(text, "\n"))
	if e.cache != nil {
		if err := e.cache.Set(ctx, cacheKey, lines, e.config.CacheTTL); err != nil {
			log.Printf("[VISION] Cache set failed: %v", err)
		}
	}
	return lines, nil
}

// preparePayload decodes the image, converts it to RGBA, downscales it
// when the longer side exceeds MaxDimension and re-encodes it as JPEG
// for the engine. Undecodable input reports ok=false.
func (e *Extractor) preparePayload(data []byte) ([]byte, bool) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		log.Printf("[VISION] Undecodable image: %v", err)
		return nil, false
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longer := width
	if height > longer {
		longer = height
	}

	scale := 1.0
	if longer > e.config.MaxDimension {
		scale = float64(e.config.MaxDimension) / float64(longer)
	}
	dstW := int(float64(width) * scale)
	dstH := int(float64(height) * scale)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 85}); err != nil {
		log.Printf("[VISION] Re-encoding %s image failed: %v", format, err)
		return nil, false
	}
	return buf.Bytes(), true
}

// CleanLines trims whitespace, drops blank lines and deduplicates
// case-insensitively while preserving first-seen order.
func CleanLines(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		lines = append(lines, trimmed)
	}
	return lines
}
