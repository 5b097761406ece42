package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Sub-signal weights. When difficulty is absent on either side, its weight
// is excluded and the remaining weights are renormalized by their sum,
// never by a fixed denominator.
const (
	weightEdit       = 0.4
	weightToken      = 0.3
	weightPhonetic   = 0.2
	weightDifficulty = 0.1
)

// Scorer computes composite name similarity in [0,1]. The name-based
// sub-signals are symmetric in their arguments.
type Scorer struct {
	locale Locale
}

// NewScorer returns a scorer using the locale's phonetic and difficulty
// tables.
func NewScorer(locale Locale) *Scorer {
	return &Scorer{locale: locale}
}

// Score combines edit-distance, token-overlap, and phonetic similarity of
// two already-normalized names, plus difficulty agreement when both labels
// are present. The result is a weighted average over the signals actually
// used.
func (s *Scorer) Score(nameA, nameB, difficultyA, difficultyB string) float64 {
	sum := weightEdit*EditSimilarity(nameA, nameB) +
		weightToken*TokenSimilarity(nameA, nameB) +
		weightPhonetic*EditSimilarity(s.Phonetic(nameA), s.Phonetic(nameB))
	used := weightEdit + weightToken + weightPhonetic

	if difficultyA != "" && difficultyB != "" {
		agreement := 0.0
		if tier := s.locale.Tier(difficultyA); tier != TierUnknown && tier == s.locale.Tier(difficultyB) {
			agreement = 1.0
		}
		sum += weightDifficulty * agreement
		used += weightDifficulty
	}

	return sum / used
}

// EditSimilarity is 1 - distance/max(len), using single-character
// insert/delete/substitute edit distance over runes. An empty input against
// a non-empty one scores 0; two empty strings score 1, a deliberate
// deviation from treating every empty operand as a non-match, so that
// self-similarity stays exact.
func EditSimilarity(a, b string) float64 {
	if a == b {
		// Two identical strings are a perfect match even when both are
		// empty, which keeps self-similarity exact for names whose
		// phonetic shape reduces to nothing.
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	longest := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longest {
		longest = lb
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// TokenSimilarity is the Jaccard index of the whitespace-token sets of the
// two names: |intersection| / |union|, 0 when either set is empty.
func TokenSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

// Phonetic reduces a normalized name to its rough phonetic shape by
// applying the locale's substitution rules in table order. Trailing-only
// rules elide word-final letters per token.
func (s *Scorer) Phonetic(name string) string {
	out := name
	for _, rule := range s.locale.PhoneticRules {
		if rule.TrailingOnly {
			out = trimWordSuffix(out, rule.Pattern)
			continue
		}
		out = strings.ReplaceAll(out, rule.Pattern, rule.Replacement)
	}
	return out
}

// trimWordSuffix strips one occurrence of suffix from the end of each
// word, leaving single-letter words intact.
func trimWordSuffix(s, suffix string) string {
	fields := strings.Fields(s)
	for i, field := range fields {
		if len(field) > len(suffix) && strings.HasSuffix(field, suffix) {
			fields[i] = field[:len(field)-len(suffix)]
		}
	}
	return strings.Join(fields, " ")
}
