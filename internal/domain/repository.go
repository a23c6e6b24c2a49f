package domain

import (
	"context"
	"time"
)

// ProductCatalog is the read-only catalog collaborator. Implementations
// must return only active products from ActiveProducts; the resolution
// core never writes through this interface.
type ProductCatalog interface {
	ActiveProducts(ctx context.Context) ([]Product, error)
	FindByGTIN(ctx context.Context, gtin14 string) (*Product, error)
}

// AssetStore is the write-only collaborator for persisting a binary
// plus provenance. SaveAsset must be idempotent over
// (ProductID, Source, Checksum).
type AssetStore interface {
	HasAsset(ctx context.Context, source, checksum string) (bool, error)
	SaveAsset(ctx context.Context, asset Asset, data []byte) (created bool, err error)
}

// Recognizer turns an image into raw recognized text. Implementations
// must honor ctx cancellation; callers treat any error as a transient
// recognition failure.
type Recognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
