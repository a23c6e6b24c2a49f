package main

import (
	"fmt"
	"log"
	"os"

	"github.com/shelfwatch/backend/config"
	httpDelivery "github.com/shelfwatch/backend/internal/delivery/http"
	"github.com/shelfwatch/backend/internal/infrastructure/cache"
	"github.com/shelfwatch/backend/internal/infrastructure/catalog"
	"github.com/shelfwatch/backend/internal/infrastructure/ocr"
	"github.com/shelfwatch/backend/internal/infrastructure/vision"
	"github.com/shelfwatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Shelfwatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	store, err := catalog.NewStore(cfg.Storage.DatabasePath, cfg.Storage.AssetsDir)
	if err != nil {
		log.Fatalf("Failed to open catalog store: %v", err)
	}
	defer store.Close()
	log.Printf("Catalog: %s (assets: %s)", cfg.Storage.DatabasePath, cfg.Storage.AssetsDir)

	memoryCache := cache.NewMemoryCache()

	ocrClient := ocr.NewClient(cfg.OCR.APIKey, cfg.OCR.BaseURL, cfg.OCR.RequestsPerSec, cfg.OCR.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		ocrClient.SetDebug(true)
		log.Printf("OCR client debug mode enabled")
	}
	log.Printf("OCR engine: %s", cfg.OCR.BaseURL)

	extractor := vision.NewExtractor(ocrClient, memoryCache, vision.Config{
		MaxDimension: cfg.Extraction.MaxDimension,
		Workers:      cfg.Extraction.Workers,
		Timeout:      cfg.OCR.Timeout,
		CacheTTL:     cfg.Extraction.CacheTTL,
	})

	// Initialize usecase layer
	tokenizer := usecase.NewTokenizer(usecase.Vocabulary{
		BrandExpansions: cfg.Matching.BrandExpansions,
	})

	photoMatcher := usecase.NewPhotoMatcher(
		store,
		tokenizer,
		usecase.PhotoMatcherConfig{
			ScoreThreshold:     cfg.Matching.PhotoScoreThreshold,
			MaxSuggestions:     cfg.Matching.PhotoMaxSuggestions,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: photo threshold=%.0f, suggestions=%d, debug=%v",
		cfg.Matching.PhotoScoreThreshold,
		cfg.Matching.PhotoMaxSuggestions,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(extractor, photoMatcher, cfg.Server.MaxUploadBytes)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
