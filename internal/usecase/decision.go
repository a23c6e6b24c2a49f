package usecase

import (
	"github.com/shelfwatch/backend/internal/domain"
)

// maxReviewCandidates caps how many ranked candidates an ambiguous
// outcome carries for human review.
const maxReviewCandidates = 5

// Thresholds parameterizes the shared decision policy. Filename
// matching uses MinScore 5 / MinSeparation 2 on the additive token
// scale; photo matching uses MinScore 70 / MinSeparation 0 on the
// 0-100 similarity scale, because its corpus is alias-level and
// near-ties between aliases of the same product are expected.
type Thresholds struct {
	MinScore      float64
	MinSeparation float64
}

// Decide classifies a ranked candidate list. The outcome is Resolved
// only when the best score clears MinScore AND its lead over the
// runner-up clears MinSeparation; anything less confident is
// Ambiguous, carrying the top candidates for review, and an empty
// list is Unresolved. Ambiguity is a terminal outcome, not an error:
// it is never auto-committed.
func Decide(ranked []domain.Candidate, t Thresholds) domain.ResolutionResult {
	if len(ranked) == 0 {
		return domain.Unresolved("no candidate scored above zero")
	}

	best := ranked[0]
	runnerUpScore := 0.0
	if len(ranked) > 1 {
		runnerUpScore = ranked[1].Score
	}

	if best.Score < t.MinScore || best.Score-runnerUpScore < t.MinSeparation {
		review := ranked
		if len(review) > maxReviewCandidates {
			review = review[:maxReviewCandidates]
		}
		return domain.Ambiguous(review)
	}

	return domain.Resolved(best)
}
