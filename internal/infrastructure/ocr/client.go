package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelfwatch/backend/internal/domain"
)

// maxAttempts bounds retries against transient engine failures.
const maxAttempts = 3

// Client calls a self-hosted text-recognition engine over HTTP. It
// satisfies domain.Recognizer; callers treat every error it returns as
// a transient recognition failure and degrade to an empty result.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// recognizeResponse is the engine's reply payload.
type recognizeResponse struct {
	Text string `json:"text"`
}

// NewClient creates a recognition client. requestsPerSecond caps the
// sustained request rate; recognition is expensive on the engine side
// and unbounded fan-out starves it.
func NewClient(apiKey, baseURL string, requestsPerSecond float64, timeout time.Duration) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 5),
	}
}

// SetDebug enables request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// RecognizeText submits image bytes and returns the recognized text.
// Retries transient failures with linear backoff; after the attempts
// are exhausted it returns ErrRecognitionFailed.
func (c *Client) RecognizeText(ctx context.Context, image []byte) (string, error) {
	reqURL := fmt.Sprintf("%s/v1/recognize", c.baseURL)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}

		text, err := c.doRecognize(ctx, reqURL, image)
		if err == nil {
			if c.debug {
				log.Printf("[OCR] Recognized %d bytes of text (attempt %d)", len(text), attempt)
			}
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		log.Printf("[OCR] Request error (attempt %d): %v", attempt, err)
		lastErr = err
		select {
		case <-time.After(time.Duration(attempt*500) * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("%w: %v", domain.ErrRecognitionFailed, lastErr)
}

// doRecognize executes a single recognition request.
func (c *Client) doRecognize(ctx context.Context, reqURL string, image []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("User-Agent", "Shelfwatch/1.0")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("engine status %d: %s", resp.StatusCode, body)
	}

	var parsed recognizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return parsed.Text, nil
}
