package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwatch/backend/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "catalog.db"), filepath.Join(dir, "assets"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedProduct(t *testing.T, store *Store, p domain.Product) int64 {
	t.Helper()
	id, err := store.InsertProduct(context.Background(), p)
	require.NoError(t, err)
	return id
}

func TestActiveProducts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedProduct(t, store, domain.Product{Brand: "Anchor", Name: "Pure Butter", WeightGrams: 500, Active: true})
	seedProduct(t, store, domain.Product{Brand: "Mainland", Name: "Butter", WeightGrams: 500, Active: true})
	seedProduct(t, store, domain.Product{Brand: "Anchor", Name: "Discontinued Spread", WeightGrams: 400, Active: false})

	products, err := store.ActiveProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
	for _, p := range products {
		assert.True(t, p.Active)
	}
}

func TestFindByGTIN(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := seedProduct(t, store, domain.Product{
		Brand: "Anchor", Name: "Pure Butter", WeightGrams: 500,
		GTIN: "00012345678905", Active: true,
	})

	t.Run("finds by canonical identifier", func(t *testing.T) {
		p, err := store.FindByGTIN(ctx, "00012345678905")
		require.NoError(t, err)
		assert.Equal(t, id, p.ID)
		assert.Equal(t, "Anchor", p.Brand)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		_, err := store.FindByGTIN(ctx, "00000000000000")
		assert.True(t, errors.Is(err, domain.ErrProductNotFound))
	})
}

func TestSaveAsset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id := seedProduct(t, store, domain.Product{Brand: "Anchor", Name: "Pure Butter", WeightGrams: 500, Active: true})
	asset := domain.Asset{
		ProductID:   id,
		Source:      "filename-import",
		Checksum:    "deadbeef",
		Path:        "anchor_butter_500g.png",
		ContentType: "image/png",
	}

	t.Run("first save creates", func(t *testing.T) {
		created, err := store.SaveAsset(ctx, asset, []byte("image bytes"))
		require.NoError(t, err)
		assert.True(t, created)

		stored := filepath.Join(store.assetsDir, "deadbeef.png")
		data, err := os.ReadFile(stored)
		require.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), data)
	})

	t.Run("duplicate save is a no-op", func(t *testing.T) {
		created, err := store.SaveAsset(ctx, asset, []byte("image bytes"))
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("has asset reflects saves", func(t *testing.T) {
		exists, err := store.HasAsset(ctx, "filename-import", "deadbeef")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.HasAsset(ctx, "filename-import", "cafebabe")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
