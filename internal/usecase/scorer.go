package usecase

import (
	"log"
	"sort"
	"strings"

	"github.com/shelfwatch/backend/internal/domain"
)

// Scoring bonuses. The sum starts from the size of the token-set
// intersection between observation and candidate.
const (
	weightExactBonus   = 10.0 // both weights present and equal
	weightCloseBonus   = 5.0  // both weights present, within 50 g
	weightCloseGrams   = 50
	brandTokenBonus    = 5.0 // candidate brand slug in observation tokens
	fullSlugBonus      = 8.0 // observation slug equals candidate full slug
	brandSubstringBonus = 3.0 // brand as raw substring of the original string
)

// Scorer computes compatibility scores between one observation and the
// candidate index. Filename and photo entry points share this scorer's
// tokenizer; the photo path layers its own similarity measure on top.
type Scorer struct {
	tokenizer          *Tokenizer
	enableDebugLogging bool
}

// NewScorer creates a scorer around the given tokenizer.
func NewScorer(t *Tokenizer, enableDebugLogging bool) *Scorer {
	return &Scorer{tokenizer: t, enableDebugLogging: enableDebugLogging}
}

// Rank scores the observation against every indexed candidate and
// returns candidates with score > 0, ordered by descending score with
// ascending product ID as the stable tie-break, so results are
// reproducible across runs.
func (s *Scorer) Rank(obs domain.Observation, idx *CandidateIndex) []domain.Candidate {
	obsTokens := s.tokenizer.Tokens(obs.Raw)
	obsSlug := s.tokenizer.Slug(obs.Raw)
	rawLower := strings.ToLower(obs.Raw)

	var ranked []domain.Candidate
	for _, profile := range idx.Profiles() {
		score := s.score(obsTokens, obsSlug, rawLower, obs.WeightGrams, profile)
		if score <= 0 {
			continue
		}
		if s.enableDebugLogging {
			log.Printf("[MATCH] %q vs %q | score: %.0f", obs.Raw, profile.Product.DisplayName(), score)
		}
		ranked = append(ranked, domain.Candidate{Product: profile.Product, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Product.ID < ranked[j].Product.ID
	})
	return ranked
}

// score applies the additive bonus scheme to one candidate.
func (s *Scorer) score(obsTokens map[string]struct{}, obsSlug, rawLower string, obsWeight int, profile domain.TokenProfile) float64 {
	score := 0.0

	for token := range profile.Tokens {
		if _, ok := obsTokens[token]; ok {
			score++
		}
	}

	if obsWeight > 0 && profile.WeightGrams > 0 {
		diff := obsWeight - profile.WeightGrams
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff == 0:
			score += weightExactBonus
		case diff <= weightCloseGrams:
			score += weightCloseBonus
		}
	}

	if profile.BrandSlug != "" {
		if _, ok := obsTokens[profile.BrandSlug]; ok {
			score += brandTokenBonus
		}
	}

	if obsSlug != "" && obsSlug == profile.FullSlug {
		score += fullSlugBonus
	}

	if brand := strings.ToLower(profile.Product.Brand); brand != "" && strings.Contains(rawLower, brand) {
		score += brandSubstringBonus
	}

	return score
}
