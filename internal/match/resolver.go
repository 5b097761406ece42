package match

import (
	"strings"

	"corduroy/internal/trail"
)

// DefaultFuzzyThreshold is the composite score at or above which an entry
// is admitted as a fuzzy candidate without any lexical relationship to the
// record's name.
const DefaultFuzzyThreshold = 0.75

// Tier identifies the strategy that produced a match, in strictly
// descending priority.
type Tier int

const (
	MatchExact Tier = iota + 1
	MatchReference
	MatchFuzzy
)

func (t Tier) String() string {
	switch t {
	case MatchExact:
		return "exact"
	case MatchReference:
		return "reference"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "none"
	}
}

// Result is the outcome of resolving one record against a catalog
// snapshot. It is ephemeral: produced per call, never stored by the
// resolver.
type Result struct {
	Entry      *trail.CatalogEntry
	Confidence float64
	Tier       Tier
}

// Resolver performs tiered matching of scraped records against a catalog.
type Resolver struct {
	normalizer *Normalizer
	scorer     *Scorer
	threshold  float64
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithFuzzyThreshold overrides the score-based admission threshold.
func WithFuzzyThreshold(threshold float64) ResolverOption {
	return func(r *Resolver) {
		if threshold > 0 && threshold <= 1 {
			r.threshold = threshold
		}
	}
}

// NewResolver builds a resolver for the given locale.
func NewResolver(locale Locale, opts ...ResolverOption) *Resolver {
	resolver := &Resolver{
		normalizer: NewNormalizer(locale),
		scorer:     NewScorer(locale),
		threshold:  DefaultFuzzyThreshold,
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Normalizer exposes the resolver's normalizer for callers that need the
// canonical comparison form (CLI diagnostics, tests).
func (r *Resolver) Normalizer() *Normalizer {
	return r.normalizer
}

// Scorer exposes the resolver's composite scorer.
func (r *Resolver) Scorer() *Scorer {
	return r.scorer
}

// Match resolves a record against the catalog. Tiers are tried in strict
// order; the first hit wins. Absence of a match returns nil and is a
// normal outcome, not an error — an empty or nil catalog always yields nil.
func (r *Resolver) Match(record trail.Record, catalog *Catalog) *Result {
	if catalog == nil || catalog.Len() == 0 {
		return nil
	}

	// Exact: the area-stripped name is a primary key.
	nameKey := strings.ToLower(StripAreaSuffix(record.Name))
	if entry, ok := catalog.Lookup(nameKey); ok {
		return &Result{Entry: entry, Confidence: 1.0, Tier: MatchExact}
	}

	// Reference: the record's trail number is filed in the secondary index.
	if record.Reference != "" {
		if entry, ok := catalog.LookupReference(record.Reference); ok {
			return &Result{Entry: entry, Confidence: 1.0, Tier: MatchReference}
		}
	}

	return r.fuzzyMatch(record, catalog)
}

// fuzzyMatch scans every name-indexed entry in ascending id order. The
// lexical admission tests (equality, substring, suffix-stripped equality)
// only qualify a candidate; the confidence reported is always the
// composite score, even for candidates admitted lexically. That score can
// sit below what equality alone would suggest when difficulty metadata
// disagrees — a deliberate carry-over of the admission/scoring split, not
// something to "fix" here.
func (r *Resolver) fuzzyMatch(record trail.Record, catalog *Catalog) *Result {
	recordNorm := r.normalizer.Normalize(record.Name)
	recordClean := StripCommonSuffix(recordNorm)

	var best *Result
	for _, entry := range catalog.Entries() {
		entryNorm := r.normalizer.Normalize(entry.Name)
		score := r.scorer.Score(recordNorm, entryNorm, record.Difficulty, entry.Difficulty)

		admitted := recordNorm != "" && recordNorm == entryNorm ||
			isSubstring(recordNorm, entryNorm) ||
			recordClean != "" && recordClean == StripCommonSuffix(entryNorm) ||
			score >= r.threshold

		if !admitted {
			continue
		}
		if best == nil || score > best.Confidence {
			best = &Result{Entry: entry, Confidence: score, Tier: MatchFuzzy}
		}
	}
	return best
}

// isSubstring reports whether either normalized name contains the other.
// Empty strings never count as substrings of anything.
func isSubstring(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
