package usecase

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/shelfwatch/backend/internal/domain"
)

// CandidateIndex holds one TokenProfile per active catalog product.
// An index is valid only for the catalog snapshot it was built from:
// it is rebuilt in full per batch (or per request) and never patched
// incrementally, since a stale or partially updated index can silently
// point at deleted or renamed products.
type CandidateIndex struct {
	profiles []domain.TokenProfile
}

// BuildIndex computes matching profiles for every active product.
// Inactive products are skipped. Profiles are ordered by ascending
// product ID so iteration order, and therefore tie-breaking, is
// reproducible across runs.
func BuildIndex(t *Tokenizer, products []domain.Product) *CandidateIndex {
	profiles := make([]domain.TokenProfile, 0, len(products))
	for _, p := range products {
		if !p.Active {
			continue
		}
		profiles = append(profiles, buildProfile(t, p))
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Product.ID < profiles[j].Product.ID
	})
	return &CandidateIndex{profiles: profiles}
}

// Profiles returns the indexed profiles in product-ID order.
func (idx *CandidateIndex) Profiles() []domain.TokenProfile {
	return idx.profiles
}

// Len returns the number of indexed products.
func (idx *CandidateIndex) Len() int {
	return len(idx.profiles)
}

// buildProfile derives one product's token set, brand slug and full
// slug. The weight itself and its "<weight>g" form join the token set
// so filename stems like "anchor_butter_500g" overlap directly.
func buildProfile(t *Tokenizer, p domain.Product) domain.TokenProfile {
	tokens := t.Tokens(p.Brand + " " + p.Name)

	brandSlug := t.Slug(p.Brand)
	if brandSlug != "" {
		tokens[brandSlug] = struct{}{}
	}

	label := p.Brand + " " + p.Name
	if p.WeightGrams > 0 {
		tokens[strconv.Itoa(p.WeightGrams)] = struct{}{}
		tokens[strconv.Itoa(p.WeightGrams)+"g"] = struct{}{}
		label = fmt.Sprintf("%s %dg", label, p.WeightGrams)
	}

	return domain.TokenProfile{
		Product:     p,
		Tokens:      tokens,
		WeightGrams: p.WeightGrams,
		BrandSlug:   brandSlug,
		FullSlug:    t.Slug(label),
	}
}
