package domain

import "fmt"

// Product is a canonical catalog item. The catalog owns and mutates
// products; this service only reads them. (Brand, Name, WeightGrams) is
// unique among active products.
type Product struct {
	ID          int64  `json:"id"`
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	WeightGrams int    `json:"weight_grams,omitempty"` // 0 = unknown
	GTIN        string `json:"gtin,omitempty"`         // canonical 14-digit form
	Active      bool   `json:"active"`
}

// DisplayName is the human-readable "brand name" form used for alias
// corpora and API responses.
func (p Product) DisplayName() string {
	if p.Brand == "" {
		return p.Name
	}
	return p.Brand + " " + p.Name
}

// Observation is a single noisy signal to resolve: a filename stem, a
// scanned digit string, or a batch of OCR lines. Never persisted.
type Observation struct {
	Raw         string   // original string, case preserved
	Lines       []string // OCR output, when the source is a photo
	WeightGrams int      // extracted weight hint, 0 = none
}

// TokenProfile is the precomputed matching profile for one product.
// Profiles are valid only for the catalog snapshot they were built
// from; a stale profile is a correctness bug.
type TokenProfile struct {
	Product     Product
	Tokens      map[string]struct{}
	WeightGrams int
	BrandSlug   string
	FullSlug    string
}

// Candidate pairs a product with its score for one observation. Valid
// only within a single resolution call.
type Candidate struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// Outcome classifies a resolution attempt.
type Outcome int

const (
	// OutcomeUnresolved means no candidate scored at all.
	OutcomeUnresolved Outcome = iota
	// OutcomeAmbiguous means more than one candidate is plausible and a
	// human (or a stronger signal) must adjudicate. Not an error.
	OutcomeAmbiguous
	// OutcomeResolved means a single candidate won under the configured
	// thresholds.
	OutcomeResolved
)

// String implements fmt.Stringer for log lines and CLI output.
func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "unresolved"
	}
}

// ResolutionResult is the tagged outcome of one resolution call.
// Resolved carries Best; Ambiguous carries up to five ranked
// Candidates for review; Unresolved carries a Reason.
type ResolutionResult struct {
	Outcome    Outcome
	Best       *Candidate
	Candidates []Candidate
	Reason     string
}

// Resolved builds a resolved result.
func Resolved(c Candidate) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeResolved, Best: &c}
}

// Ambiguous builds an ambiguous result over the given ranked candidates.
func Ambiguous(ranked []Candidate) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeAmbiguous, Candidates: ranked}
}

// Unresolved builds an unresolved result with a human-readable reason.
func Unresolved(reason string) ResolutionResult {
	return ResolutionResult{Outcome: OutcomeUnresolved, Reason: reason}
}

// Suggestion is one alternative product offered alongside a photo
// identification response.
type Suggestion struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
}

// PhotoMatch is the structured payload of a photo identification.
// Score is always populated; ProductID/ProductName stay nil when the
// best alias fell below the acceptance threshold.
type PhotoMatch struct {
	Score       float64      `json:"score"`
	ProductID   *int64       `json:"product_id"`
	ProductName *string      `json:"product_name"`
	Lines       []string     `json:"lines"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Asset records a stored binary plus its provenance. The triple
// (ProductID, Source, Checksum) is the idempotency key: re-processing
// the same observation must not create duplicates.
type Asset struct {
	ProductID   int64
	Source      string // e.g. "filename-import", "photo-upload"
	Checksum    string // hex SHA-256 of the binary
	Path        string // location of the stored binary
	ContentType string
}

// Key returns the dedup key for logging.
func (a Asset) Key() string {
	return fmt.Sprintf("%d:%s:%s", a.ProductID, a.Source, a.Checksum)
}
