package usecase

import (
	"testing"

	"github.com/shelfwatch/backend/internal/domain"
)

func candidates(scores ...float64) []domain.Candidate {
	out := make([]domain.Candidate, len(scores))
	for i, s := range scores {
		out[i] = domain.Candidate{Product: domain.Product{ID: int64(i + 1)}, Score: s}
	}
	return out
}

func TestDecide(t *testing.T) {
	thresholds := Thresholds{MinScore: 5, MinSeparation: 2}

	t.Run("empty list is unresolved", func(t *testing.T) {
		result := Decide(nil, thresholds)
		if result.Outcome != domain.OutcomeUnresolved {
			t.Errorf("outcome = %v, want unresolved", result.Outcome)
		}
		if result.Reason == "" {
			t.Error("unresolved result should carry a reason")
		}
	})

	t.Run("clear winner resolves", func(t *testing.T) {
		result := Decide(candidates(21, 12, 3), thresholds)
		if result.Outcome != domain.OutcomeResolved {
			t.Fatalf("outcome = %v, want resolved", result.Outcome)
		}
		if result.Best.Product.ID != 1 || result.Best.Score != 21 {
			t.Errorf("best = %+v, want product 1 score 21", result.Best)
		}
	})

	t.Run("single candidate above threshold resolves", func(t *testing.T) {
		result := Decide(candidates(6), thresholds)
		if result.Outcome != domain.OutcomeResolved {
			t.Errorf("outcome = %v, want resolved", result.Outcome)
		}
	})

	t.Run("below min score is ambiguous", func(t *testing.T) {
		result := Decide(candidates(4), thresholds)
		if result.Outcome != domain.OutcomeAmbiguous {
			t.Errorf("outcome = %v, want ambiguous", result.Outcome)
		}
	})

	t.Run("narrow separation is ambiguous", func(t *testing.T) {
		result := Decide(candidates(12, 11), thresholds)
		if result.Outcome != domain.OutcomeAmbiguous {
			t.Errorf("outcome = %v, want ambiguous", result.Outcome)
		}
	})

	t.Run("separation exactly at the threshold resolves", func(t *testing.T) {
		result := Decide(candidates(12, 10), thresholds)
		if result.Outcome != domain.OutcomeResolved {
			t.Errorf("outcome = %v, want resolved", result.Outcome)
		}
	})

	t.Run("ambiguous carries at most five candidates", func(t *testing.T) {
		result := Decide(candidates(4, 4, 4, 4, 4, 4, 4), thresholds)
		if result.Outcome != domain.OutcomeAmbiguous {
			t.Fatalf("outcome = %v, want ambiguous", result.Outcome)
		}
		if len(result.Candidates) != 5 {
			t.Errorf("carried %d candidates, want 5", len(result.Candidates))
		}
	})

	t.Run("resolved iff both conditions hold", func(t *testing.T) {
		cases := []struct {
			best, runnerUp float64
		}{
			{0, 0}, {4, 0}, {5, 0}, {5, 4}, {6, 5}, {7, 5}, {10, 7}, {100, 0},
		}
		for _, c := range cases {
			result := Decide(candidates(c.best, c.runnerUp), thresholds)
			shouldResolve := c.best >= thresholds.MinScore && c.best-c.runnerUp >= thresholds.MinSeparation
			resolved := result.Outcome == domain.OutcomeResolved
			if resolved != shouldResolve {
				t.Errorf("best=%v runnerUp=%v: resolved=%v, want %v", c.best, c.runnerUp, resolved, shouldResolve)
			}
		}
	})

	t.Run("zero separation tolerates exact ties", func(t *testing.T) {
		result := Decide(candidates(80, 80), Thresholds{MinScore: 70})
		if result.Outcome != domain.OutcomeResolved {
			t.Errorf("outcome = %v, want resolved under photo-style thresholds", result.Outcome)
		}
	})
}
