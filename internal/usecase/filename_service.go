package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shelfwatch/backend/internal/domain"
)

// Per-file batch outcome statuses.
const (
	StatusCreated         = "created"
	StatusSkippedExisting = "skipped_existing"
	StatusSkippedNoMatch  = "skipped_no_match"
	StatusAmbiguous       = "ambiguous"
	StatusFailed          = "failed"
)

// matchableExtensions are the image types the batch matcher considers.
var matchableExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// FileOutcome is the result for one file in a batch run.
type FileOutcome struct {
	File       string
	Status     string
	Product    *domain.Product
	Score      float64
	Candidates []domain.Candidate
	Err        error
}

// BatchSummary aggregates outcome counts for one run.
type BatchSummary struct {
	Created   int
	Existing  int
	NoMatch   int
	Ambiguous int
	Failed    int
	Outcomes  []FileOutcome
}

// FilenameMatcherConfig holds configuration for the batch matcher.
type FilenameMatcherConfig struct {
	Thresholds         Thresholds
	Source             string
	Workers            int
	DryRun             bool
	EnableDebugLogging bool
}

// FilenameMatcher resolves image filenames against the product catalog
// and commits matched binaries to the asset store. Resolution is pure
// and side-effect-free; committing is a separate, idempotent step so
// the matching logic tests without any storage.
type FilenameMatcher struct {
	catalog   domain.ProductCatalog
	assets    domain.AssetStore
	tokenizer *Tokenizer
	scorer    *Scorer
	config    FilenameMatcherConfig
}

// NewFilenameMatcher creates a batch matcher with its dependencies.
func NewFilenameMatcher(
	catalog domain.ProductCatalog,
	assets domain.AssetStore,
	tokenizer *Tokenizer,
	config FilenameMatcherConfig,
) *FilenameMatcher {
	if config.Thresholds.MinScore <= 0 {
		config.Thresholds = Thresholds{MinScore: 5, MinSeparation: 2}
	}
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.Source == "" {
		config.Source = "filename-import"
	}
	return &FilenameMatcher{
		catalog:   catalog,
		assets:    assets,
		tokenizer: tokenizer,
		scorer:    NewScorer(tokenizer, config.EnableDebugLogging),
		config:    config,
	}
}

// ResolveFilename matches a single filename against a prebuilt index.
// Pure: no catalog or storage access.
func (m *FilenameMatcher) ResolveFilename(filename string, idx *CandidateIndex) domain.ResolutionResult {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		return domain.Unresolved("empty filename stem")
	}

	obs := domain.Observation{Raw: stem}
	if grams, ok := m.tokenizer.ExtractWeight(stem); ok {
		obs.WeightGrams = grams
	}

	return Decide(m.scorer.Rank(obs, idx), m.config.Thresholds)
}

// Commit persists the matched binary with provenance. Keyed by
// (product, source, checksum) in the store, so re-running the same
// batch never creates duplicates. Returns false when the asset
// already existed.
func (m *FilenameMatcher) Commit(ctx context.Context, product domain.Product, path, checksum string, data []byte) (bool, error) {
	return m.assets.SaveAsset(ctx, domain.Asset{
		ProductID:   product.ID,
		Source:      m.config.Source,
		Checksum:    checksum,
		Path:        path,
		ContentType: matchableExtensions[strings.ToLower(filepath.Ext(path))],
	}, data)
}

// Run matches every image file in dir. The candidate index is built
// once from the current catalog snapshot; files are processed by a
// bounded worker pool, and one unreadable file never aborts the rest.
func (m *FilenameMatcher) Run(ctx context.Context, dir string) (*BatchSummary, error) {
	products, err := m.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	idx := BuildIndex(m.tokenizer, products)

	files, err := listImageFiles(dir)
	if err != nil {
		return nil, err
	}

	outcomes := make([]FileOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Workers)
	for i, file := range files {
		g.Go(func() error {
			outcomes[i] = m.processFile(gctx, file, idx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &BatchSummary{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case StatusCreated:
			summary.Created++
		case StatusSkippedExisting:
			summary.Existing++
		case StatusSkippedNoMatch:
			summary.NoMatch++
		case StatusAmbiguous:
			summary.Ambiguous++
		case StatusFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

// processFile resolves and, outside dry-run, commits one file. All
// per-item failures collapse into a failed outcome.
func (m *FilenameMatcher) processFile(ctx context.Context, path string, idx *CandidateIndex) FileOutcome {
	outcome := FileOutcome{File: path}

	data, err := os.ReadFile(path)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	exists, err := m.assets.HasAsset(ctx, m.config.Source, checksum)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		return outcome
	}
	if exists {
		outcome.Status = StatusSkippedExisting
		return outcome
	}

	result := m.ResolveFilename(path, idx)
	switch result.Outcome {
	case domain.OutcomeResolved:
		outcome.Product = &result.Best.Product
		outcome.Score = result.Best.Score
		if m.config.DryRun {
			outcome.Status = StatusCreated
			return outcome
		}
		created, err := m.Commit(ctx, result.Best.Product, path, checksum, data)
		if err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			return outcome
		}
		if !created {
			outcome.Status = StatusSkippedExisting
			return outcome
		}
		outcome.Status = StatusCreated
	case domain.OutcomeAmbiguous:
		outcome.Status = StatusAmbiguous
		outcome.Candidates = result.Candidates
	default:
		outcome.Status = StatusSkippedNoMatch
	}
	return outcome
}

// listImageFiles returns the matchable files directly under dir,
// sorted for stable output.
func listImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := matchableExtensions[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		log.Printf("[BATCH] No image files found in %s", dir)
	}
	return files, nil
}
