package usecase

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestTokens(t *testing.T) {
	tok := NewTokenizer(Vocabulary{})

	t.Run("lowercases and splits on non-alphanumeric runs", func(t *testing.T) {
		got := tok.Tokens("Anchor_Pure--Butter  500g!")
		want := map[string]struct{}{
			"anchor": {}, "pure": {}, "butter": {}, "500g": {},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Tokens = %v, want %v", got, want)
		}
	})

	t.Run("empty input yields empty set", func(t *testing.T) {
		if got := tok.Tokens(""); len(got) != 0 {
			t.Errorf("Tokens(\"\") = %v, want empty", got)
		}
		if got := tok.Tokens("--!!--"); len(got) != 0 {
			t.Errorf("Tokens(separators only) = %v, want empty", got)
		}
	})

	t.Run("is order independent", func(t *testing.T) {
		words := []string{"anchor", "pure", "butter", "500g", "block"}
		want := tok.Tokens(strings.Join(words, " "))

		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 10; i++ {
			shuffled := append([]string(nil), words...)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			got := tok.Tokens(strings.Join(shuffled, " "))
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("shuffle %d: Tokens = %v, want %v", i, got, want)
			}
		}
	})

	t.Run("applies configured brand expansions", func(t *testing.T) {
		tok := NewTokenizer(Vocabulary{
			BrandExpansions: map[string][]string{
				"paknsave": {"pak", "n", "save"},
			},
		})
		got := tok.Tokens("PakNSave milk")
		for _, want := range []string{"paknsave", "pak", "n", "save", "milk"} {
			if _, ok := got[want]; !ok {
				t.Errorf("Tokens missing %q: %v", want, got)
			}
		}
	})
}

func TestSlug(t *testing.T) {
	tok := NewTokenizer(Vocabulary{})

	tests := []struct {
		in   string
		want string
	}{
		{"Anchor Pure Butter 500g", "anchor-pure-butter-500g"},
		{"anchor_butter_500g", "anchor-butter-500g"},
		{"", ""},
		{"  Mainland  ", "mainland"},
	}
	for _, tt := range tests {
		if got := tok.Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractWeight(t *testing.T) {
	tok := NewTokenizer(Vocabulary{})

	tests := []struct {
		name  string
		in    string
		grams int
		ok    bool
	}{
		{"gram suffix", "anchor_butter_500g", 500, true},
		{"gram word", "flour 250 gram bag", 250, true},
		{"kilogram decimal", "rice 1.5kg", 1500, true},
		{"kilo word", "sugar 2 kilo", 2000, true},
		{"comma decimal", "pasta 0,5 kg", 500, true},
		{"bare three digit run", "mainland butter 750", 750, true},
		{"bare run followed by letter", "product 1234x", 0, false},
		{"below plausible range", "sachet 25g", 0, false},
		{"above plausible range", "bulk 3kg", 0, false},
		{"no weight", "anchor butter", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grams, ok := tok.ExtractWeight(tt.in)
			if grams != tt.grams || ok != tt.ok {
				t.Errorf("ExtractWeight(%q) = (%d, %v), want (%d, %v)", tt.in, grams, ok, tt.grams, tt.ok)
			}
		})
	}
}
