package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/shelfwatch/backend/internal/domain"
)

// topAliasesForSuggestions is how many scored aliases are considered
// before collapsing to distinct products.
const topAliasesForSuggestions = 10

// PhotoMatcherConfig holds configuration for the photo matcher.
type PhotoMatcherConfig struct {
	ScoreThreshold     float64 // 0-100 acceptance threshold
	MaxSuggestions     int     // distinct products offered alongside
	EnableDebugLogging bool
}

// PhotoMatcher resolves OCR output against an alias corpus built from
// the catalog. OCR text is fragmentary and order-scrambled, so aliases
// are scored with a partial, substring-tolerant similarity on a 0-100
// scale rather than whole-string distance.
type PhotoMatcher struct {
	catalog   domain.ProductCatalog
	tokenizer *Tokenizer
	config    PhotoMatcherConfig
}

// NewPhotoMatcher creates a photo matcher with its dependencies.
func NewPhotoMatcher(catalog domain.ProductCatalog, tokenizer *Tokenizer, config PhotoMatcherConfig) *PhotoMatcher {
	if config.ScoreThreshold <= 0 {
		config.ScoreThreshold = 70
	}
	if config.MaxSuggestions <= 0 {
		config.MaxSuggestions = 3
	}
	return &PhotoMatcher{catalog: catalog, tokenizer: tokenizer, config: config}
}

// alias is one human-readable corpus entry mapped back to its product.
type alias struct {
	text    string
	product domain.Product
}

// scoredAlias carries an alias with its similarity against a haystack.
type scoredAlias struct {
	alias
	score float64
}

// Identify matches extracted text lines to a catalog product. An empty
// line list or an empty corpus short-circuits to a zero-score result
// with no product and no suggestions; a best alias below the threshold
// still reports its score, with the product left unset.
func (m *PhotoMatcher) Identify(ctx context.Context, lines []string) (*domain.PhotoMatch, error) {
	match := &domain.PhotoMatch{Lines: lines}
	if lines == nil {
		match.Lines = []string{}
	}

	haystack := m.buildHaystack(lines)
	if haystack == "" {
		return match, nil
	}

	corpus, err := m.buildCorpus(ctx)
	if err != nil {
		return nil, fmt.Errorf("building alias corpus: %w", err)
	}
	if len(corpus) == 0 {
		return match, nil
	}

	scored := make([]scoredAlias, 0, len(corpus))
	for _, a := range corpus {
		s := partialSimilarity(a.text, haystack)
		if m.config.EnableDebugLogging {
			log.Printf("[PHOTO] alias %q vs haystack | score: %.1f", a.text, s)
		}
		scored = append(scored, scoredAlias{alias: a, score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].product.ID < scored[j].product.ID
	})

	match.Score = scored[0].score
	match.Suggestions = m.suggestions(scored)

	result := Decide(rankPerProduct(scored), Thresholds{MinScore: m.config.ScoreThreshold})
	if result.Outcome == domain.OutcomeResolved {
		product := result.Best.Product
		name := product.DisplayName()
		match.ProductID = &product.ID
		match.ProductName = &name
	}
	return match, nil
}

// buildHaystack lowercases and concatenates the extracted lines.
func (m *PhotoMatcher) buildHaystack(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(strings.ToLower(line)); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}

// buildCorpus reads the catalog and produces alias strings per
// product: "brand name" always, plus "brand name <weight>g" when the
// weight is known. Rebuilt per call so it can never outlive the
// catalog snapshot it came from.
func (m *PhotoMatcher) buildCorpus(ctx context.Context) ([]alias, error) {
	products, err := m.catalog.ActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	corpus := make([]alias, 0, len(products)*2)
	for _, p := range products {
		if !p.Active {
			continue
		}
		base := strings.Join(m.tokenizer.Fields(p.DisplayName()), " ")
		if base == "" {
			continue
		}
		corpus = append(corpus, alias{text: base, product: p})
		if p.WeightGrams > 0 {
			corpus = append(corpus, alias{text: fmt.Sprintf("%s %dg", base, p.WeightGrams), product: p})
		}
	}
	return corpus, nil
}

// suggestions collapses the top-scoring aliases to at most
// MaxSuggestions distinct products, preserving rank order.
func (m *PhotoMatcher) suggestions(scored []scoredAlias) []domain.Suggestion {
	top := scored
	if len(top) > topAliasesForSuggestions {
		top = top[:topAliasesForSuggestions]
	}
	seen := make(map[int64]bool)
	var out []domain.Suggestion
	for _, sa := range top {
		if sa.score <= 0 || seen[sa.product.ID] {
			continue
		}
		seen[sa.product.ID] = true
		out = append(out, domain.Suggestion{ProductID: sa.product.ID, Name: sa.product.DisplayName()})
		if len(out) == m.config.MaxSuggestions {
			break
		}
	}
	return out
}

// rankPerProduct reduces alias-level scores to one candidate per
// product (its best alias), ready for the shared decision policy.
func rankPerProduct(scored []scoredAlias) []domain.Candidate {
	seen := make(map[int64]bool)
	var ranked []domain.Candidate
	for _, sa := range scored {
		if seen[sa.product.ID] {
			continue
		}
		seen[sa.product.ID] = true
		ranked = append(ranked, domain.Candidate{Product: sa.product, Score: sa.score})
	}
	return ranked
}

// partialSimilarity scores an alias against a haystack on a 0-100
// scale. An exact substring scores 100; otherwise the alias is slid
// across token windows of the haystack and the best Levenshtein
// similarity wins. Full-string similarity under-scores true matches
// when the haystack carries prices and unrelated label text.
func partialSimilarity(needle, haystack string) float64 {
	if needle == "" || haystack == "" {
		return 0
	}
	if strings.Contains(haystack, needle) {
		return 100
	}

	hayTokens := strings.Fields(haystack)
	window := len(strings.Fields(needle))
	if window == 0 {
		return 0
	}
	if window >= len(hayTokens) {
		return similarity(needle, haystack)
	}

	best := 0.0
	for i := 0; i+window <= len(hayTokens); i++ {
		candidate := strings.Join(hayTokens[i:i+window], " ")
		if s := similarity(needle, candidate); s > best {
			best = s
		}
	}
	return best
}

// similarity wraps the edlib call so malformed input degrades to zero
// instead of raising at call sites.
func similarity(a, b string) float64 {
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim) * 100
}
