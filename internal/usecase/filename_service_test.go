package usecase

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shelfwatch/backend/internal/domain"
)

// MockCatalog is a mock implementation of domain.ProductCatalog
type MockCatalog struct {
	products []domain.Product
	err      error
}

func (m *MockCatalog) ActiveProducts(ctx context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var active []domain.Product
	for _, p := range m.products {
		if p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func (m *MockCatalog) FindByGTIN(ctx context.Context, gtin14 string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.GTIN == gtin14 && p.Active {
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

// MockAssetStore is a mock implementation of domain.AssetStore
type MockAssetStore struct {
	mu     sync.Mutex
	assets map[string]domain.Asset // keyed by source:checksum
	saves  int
}

func NewMockAssetStore() *MockAssetStore {
	return &MockAssetStore{assets: make(map[string]domain.Asset)}
}

func (m *MockAssetStore) HasAsset(ctx context.Context, source, checksum string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[source+":"+checksum]
	return ok, nil
}

func (m *MockAssetStore) SaveAsset(ctx context.Context, asset domain.Asset, data []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	key := asset.Source + ":" + asset.Checksum
	if _, ok := m.assets[key]; ok {
		return false, nil
	}
	m.assets[key] = asset
	return true, nil
}

func newTestMatcher(assets *MockAssetStore, dryRun bool) *FilenameMatcher {
	return NewFilenameMatcher(
		&MockCatalog{products: butterCatalog()},
		assets,
		NewTokenizer(Vocabulary{}),
		FilenameMatcherConfig{DryRun: dryRun, Workers: 2},
	)
}

func TestResolveFilename(t *testing.T) {
	matcher := newTestMatcher(NewMockAssetStore(), false)
	tok := NewTokenizer(Vocabulary{})
	idx := BuildIndex(tok, butterCatalog())

	t.Run("branded filename with weight resolves", func(t *testing.T) {
		result := matcher.ResolveFilename("anchor_butter_500g.png", idx)
		if result.Outcome != domain.OutcomeResolved {
			t.Fatalf("outcome = %v, want resolved", result.Outcome)
		}
		if result.Best.Product.ID != 1 {
			t.Errorf("resolved product = %d, want 1 (Anchor 500g)", result.Best.Product.ID)
		}
	})

	t.Run("weight without brand is ambiguous", func(t *testing.T) {
		result := matcher.ResolveFilename("butter_500g.png", idx)
		if result.Outcome != domain.OutcomeAmbiguous {
			t.Fatalf("outcome = %v, want ambiguous", result.Outcome)
		}
		if len(result.Candidates) < 2 {
			t.Errorf("carried %d candidates, want >= 2", len(result.Candidates))
		}
	})

	t.Run("unrelated filename is unresolved", func(t *testing.T) {
		result := matcher.ResolveFilename("frozen_peas_1kg.png", idx)
		if result.Outcome != domain.OutcomeUnresolved {
			t.Errorf("outcome = %v, want unresolved", result.Outcome)
		}
	})

	t.Run("empty stem is unresolved", func(t *testing.T) {
		result := matcher.ResolveFilename(".png", idx)
		if result.Outcome != domain.OutcomeUnresolved {
			t.Errorf("outcome = %v, want unresolved", result.Outcome)
		}
	})
}

func writeTestImages(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("image bytes for "+name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates outcomes per file", func(t *testing.T) {
		assets := NewMockAssetStore()
		matcher := newTestMatcher(assets, false)
		dir := writeTestImages(t,
			"anchor_butter_500g.png", // resolves to product 1
			"butter_500g.jpg",        // ambiguous between 1 and 3
			"frozen_peas.webp",       // no match
			"notes.txt",              // ignored entirely
		)

		summary, err := matcher.Run(ctx, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Created != 1 || summary.Ambiguous != 1 || summary.NoMatch != 1 {
			t.Errorf("summary = %+v, want 1 created / 1 ambiguous / 1 no-match", summary)
		}
		if len(summary.Outcomes) != 3 {
			t.Errorf("outcomes = %d, want 3 (txt file ignored)", len(summary.Outcomes))
		}
	})

	t.Run("rerun skips existing assets", func(t *testing.T) {
		assets := NewMockAssetStore()
		matcher := newTestMatcher(assets, false)
		dir := writeTestImages(t, "anchor_butter_500g.png")

		first, err := matcher.Run(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		second, err := matcher.Run(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		if first.Created != 1 {
			t.Errorf("first run created = %d, want 1", first.Created)
		}
		if second.Created != 0 || second.Existing != 1 {
			t.Errorf("second run = %+v, want 0 created / 1 existing", second)
		}
	})

	t.Run("dry run commits nothing", func(t *testing.T) {
		assets := NewMockAssetStore()
		matcher := newTestMatcher(assets, true)
		dir := writeTestImages(t, "anchor_butter_500g.png")

		summary, err := matcher.Run(ctx, dir)
		if err != nil {
			t.Fatal(err)
		}
		if summary.Created != 1 {
			t.Errorf("created = %d, want 1 (reported, not committed)", summary.Created)
		}
		if assets.saves != 0 {
			t.Errorf("saves = %d, want 0 in dry run", assets.saves)
		}
	})

	t.Run("unreadable directory fails the run", func(t *testing.T) {
		matcher := newTestMatcher(NewMockAssetStore(), false)
		if _, err := matcher.Run(ctx, filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
