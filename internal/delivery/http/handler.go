package http

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shelfwatch/backend/internal/domain"
	"github.com/shelfwatch/backend/internal/usecase"
)

// LineExtractor turns image bytes into cleaned label text lines.
type LineExtractor interface {
	ExtractLines(ctx context.Context, data []byte) ([]string, error)
}

// PhotoIdentifier resolves extracted lines against the product catalog.
type PhotoIdentifier interface {
	Identify(ctx context.Context, lines []string) (*domain.PhotoMatch, error)
}

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	extractor      LineExtractor
	matcher        PhotoIdentifier
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler
func NewHandler(extractor LineExtractor, matcher PhotoIdentifier, maxUploadBytes int64) *Handler {
	return &Handler{
		extractor:      extractor,
		matcher:        matcher,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfwatch-backend",
		"version": "1.0.0",
	})
}

// IdentifyPhoto handles product identification from an uploaded photo.
// A photo that matches nothing is still a 200 with a zero score and
// null product fields.
func (h *Handler) IdentifyPhoto(c *gin.Context) {
	data, err := h.readImage(c)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	lines, err := h.extractor.ExtractLines(c.Request.Context(), data)
	if err != nil {
		// Only context cancellation reaches here; recognition failures
		// degrade to empty lines inside the extractor.
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "extraction aborted"})
		return
	}

	match, err := h.matcher.Identify(c.Request.Context(), lines)
	if err != nil {
		log.Printf("[HTTP] identify failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identification failed"})
		return
	}

	c.JSON(http.StatusOK, match)
}

type gtinRequest struct {
	Code string `json:"code"`
}

// NormalizeGTIN validates a scanned barcode and returns its canonical
// 14-digit form.
func (h *Handler) NormalizeGTIN(c *gin.Context) {
	var req gtinRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidRequest.Error()})
		return
	}

	gtin14, err := usecase.NormalizeGTIN(req.Code)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gtin14": gtin14})
}

// readImage accepts either a raw image body or a multipart form with an
// "image" part, enforcing the declared content type and the size cap.
func (h *Handler) readImage(c *gin.Context) ([]byte, error) {
	contentType, _, err := mime.ParseMediaType(c.ContentType())
	if err != nil {
		return nil, domain.ErrUnsupportedImageType
	}

	var (
		body     io.Reader
		declared string
	)
	if contentType == "multipart/form-data" {
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			if isTooLarge(err) {
				return nil, domain.ErrImageTooLarge
			}
			return nil, domain.ErrInvalidRequest
		}
		defer file.Close()
		body = file
		declared, _, _ = mime.ParseMediaType(header.Header.Get("Content-Type"))
	} else {
		body = c.Request.Body
		declared = contentType
	}

	if !acceptedImageTypes[declared] {
		return nil, domain.ErrUnsupportedImageType
	}

	data, err := io.ReadAll(io.LimitReader(body, h.maxUploadBytes+1))
	if err != nil {
		if isTooLarge(err) {
			return nil, domain.ErrImageTooLarge
		}
		return nil, domain.ErrInvalidRequest
	}
	if int64(len(data)) > h.maxUploadBytes {
		return nil, domain.ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	return data, nil
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// statusForError maps validation sentinels onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedImageType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadRequest
	}
}
