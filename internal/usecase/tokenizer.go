package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex patterns for performance
var (
	nonAlnumRegex = regexp.MustCompile(`[^a-z0-9]+`)

	// Weight patterns, applied to lowercased text. Kilo units are
	// checked first so "1.5kg" never reads as grams.
	kiloWeightRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:kg|kilos?)(?:$|[^a-z])`)
	gramWeightRegex = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(?:g|grams?)(?:$|[^a-z])`)

	// A bare 3-4 digit run counts as a weight only when not followed by
	// a letter, so "1234x" is never a weight but "butter 500" is.
	bareWeightRegex = regexp.MustCompile(`(?:^|[^0-9])(\d{3,4})(?:$|[^0-9a-z])`)
)

// Weights outside this range are treated as "no weight found" rather
// than an error; packaged grocery items fall inside it.
const (
	minPlausibleGrams = 50
	maxPlausibleGrams = 2000
)

// Vocabulary holds the injectable matching vocabulary. Brand
// expansions map a normalized brand token to the sub-tokens it splits
// into on catalog labels (e.g. "paknsave" -> pak, n, save), so a
// tokenized observation still overlaps with catalog tokens for
// multi-word brands. Tests substitute their own tables.
type Vocabulary struct {
	BrandExpansions map[string][]string
}

// Tokenizer normalizes arbitrary strings into comparable token sets.
type Tokenizer struct {
	vocab Vocabulary
}

// NewTokenizer creates a tokenizer with the given vocabulary.
func NewTokenizer(vocab Vocabulary) *Tokenizer {
	return &Tokenizer{vocab: vocab}
}

// Fields splits text into ordered normalized tokens: lowercase, every
// run of non-alphanumeric characters collapsed to one separator, empty
// pieces dropped. Empty input yields no fields.
func (t *Tokenizer) Fields(text string) []string {
	cleaned := nonAlnumRegex.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(cleaned)
}

// Tokens returns the normalized token set for text, with configured
// brand expansions applied. Order-independent by construction.
func (t *Tokenizer) Tokens(text string) map[string]struct{} {
	fields := t.Fields(text)
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
		for _, sub := range t.vocab.BrandExpansions[f] {
			tokens[sub] = struct{}{}
		}
	}
	return tokens
}

// Slug joins the normalized fields of text with hyphens:
// "Anchor Pure Butter 500g" -> "anchor-pure-butter-500g".
func (t *Tokenizer) Slug(text string) string {
	return strings.Join(t.Fields(text), "-")
}

// ExtractWeight pulls a packaged-goods weight in grams out of text.
// Recognizes "<n> kg|kilo", "<n> g|gram" and bare 3-4 digit runs not
// followed by a letter; kilo values are converted x1000 and rounded.
// Results outside [50, 2000] grams report ok=false.
func (t *Tokenizer) ExtractWeight(text string) (grams int, ok bool) {
	lower := strings.ToLower(text)

	if m := kiloWeightRegex.FindStringSubmatch(lower); m != nil {
		return boundWeight(parseDecimal(m[1]) * 1000)
	}
	if m := gramWeightRegex.FindStringSubmatch(lower); m != nil {
		return boundWeight(parseDecimal(m[1]))
	}
	if m := bareWeightRegex.FindStringSubmatch(lower); m != nil {
		return boundWeight(parseDecimal(m[1]))
	}
	return 0, false
}

// parseDecimal parses a number that may use a comma decimal separator.
func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0
	}
	return v
}

// boundWeight rounds and applies the plausibility range.
func boundWeight(v float64) (int, bool) {
	grams := int(math.Round(v))
	if grams < minPlausibleGrams || grams > maxPlausibleGrams {
		return 0, false
	}
	return grams, true
}
