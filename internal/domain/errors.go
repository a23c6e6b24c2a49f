package domain

import "errors"

// Validation errors are caller-correctable and surfaced immediately.
// Transient I/O errors are swallowed at the matcher boundary into
// empty or zero-score results so one bad input never aborts a batch.
var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnsupportedImageType is returned for uploads that are not JPEG, PNG or WebP
	ErrUnsupportedImageType = errors.New("unsupported image content type")

	// ErrImageTooLarge is returned when an upload exceeds the configured size cap
	ErrImageTooLarge = errors.New("image exceeds maximum upload size")

	// ErrGTINLength is returned when a normalized code is not 8, 13 or 14 digits
	ErrGTINLength = errors.New("Unsupported GTIN length")

	// ErrGTINCheckDigit is returned when the mod-10 check digit does not validate
	ErrGTINCheckDigit = errors.New("Invalid GTIN check digit")

	// ErrProductNotFound is returned when no catalog product matches a join key
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrRecognitionFailed is returned by the OCR client after retries are exhausted
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
