package match

import "strings"

// DifficultyTier is a canonical difficulty bucket. Resort pages and mapped
// features label difficulty in different vocabularies (and languages); both
// sides are folded into one of four tiers before comparison.
type DifficultyTier int

const (
	TierUnknown DifficultyTier = iota
	TierEasy
	TierIntermediate
	TierAdvanced
	TierExpert
)

// PhoneticRule rewrites one sound pattern. Rules are applied in table
// order; TrailingOnly rules strip the pattern from the end of each word
// instead of rewriting every occurrence.
type PhoneticRule struct {
	Pattern      string
	Replacement  string
	TrailingOnly bool
}

// Locale carries the language-specific data tables used by the normalizer
// and scorer. The tables are configuration, not control flow: adding a
// locale means adding tables, not code.
type Locale struct {
	// Prefixes are leading articles and generic nouns stripped from the
	// start of a name, at most one, longest match first. Entries must
	// include their trailing separator (space or apostrophe) so they only
	// match at a word boundary.
	Prefixes []string

	// Articles are removed anywhere in the name as whole space-delimited
	// tokens after punctuation normalization.
	Articles []string

	// PhoneticRules reduce a normalized name to a rough phonetic shape.
	PhoneticRules []PhoneticRule

	// Difficulties maps folded difficulty labels to canonical tiers.
	Difficulties map[string]DifficultyTier
}

// LocaleByName resolves a locale code from configuration. The empty string
// selects the default French tables.
func LocaleByName(name string) (Locale, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fr":
		return French(), true
	}
	return Locale{}, false
}

// French returns the Québécois French locale used by the shipped resort
// sources. Prefix entries appear with both ASCII and typographic
// apostrophes because prefix stripping runs before punctuation
// normalization.
func French() Locale {
	return Locale{
		Prefixes: []string{
			"piste de la ", "piste de l'", "piste de l’",
			"piste du ", "piste des ", "piste de ", "piste ",
			"sentier de la ", "sentier de l'", "sentier de l’",
			"sentier du ", "sentier des ", "sentier de ", "sentier ",
			"trail ",
			"la ", "le ", "les ", "l'", "l’", "the ",
		},
		Articles: []string{"la", "le", "les", "l", "de", "du", "des", "d", "the"},
		PhoneticRules: []PhoneticRule{
			// Digraph simplifications.
			{Pattern: "ph", Replacement: "f"},
			{Pattern: "qu", Replacement: "k"},
			{Pattern: "gu", Replacement: "g"},
			{Pattern: "ch", Replacement: "sh"},
			// Diphthong reductions.
			{Pattern: "eau", Replacement: "o"},
			{Pattern: "au", Replacement: "o"},
			{Pattern: "oi", Replacement: "wa"},
			{Pattern: "ou", Replacement: "u"},
			{Pattern: "ai", Replacement: "e"},
			{Pattern: "ei", Replacement: "e"},
			{Pattern: "eu", Replacement: "e"},
			// Doubled consonants collapse.
			{Pattern: "ss", Replacement: "s"},
			{Pattern: "ll", Replacement: "l"},
			{Pattern: "tt", Replacement: "t"},
			{Pattern: "nn", Replacement: "n"},
			{Pattern: "mm", Replacement: "m"},
			{Pattern: "rr", Replacement: "r"},
			{Pattern: "pp", Replacement: "p"},
			// Silent letters.
			{Pattern: "h", Replacement: ""},
			{Pattern: "e", TrailingOnly: true},
			{Pattern: "s", TrailingOnly: true},
			{Pattern: "t", TrailingOnly: true},
			{Pattern: "x", TrailingOnly: true},
			{Pattern: "d", TrailingOnly: true},
		},
		Difficulties: map[string]DifficultyTier{
			// Easy (green circle).
			"easy": TierEasy, "novice": TierEasy, "beginner": TierEasy,
			"green": TierEasy, "facile": TierEasy, "vert": TierEasy,
			"verte": TierEasy, "debutant": TierEasy, "debutante": TierEasy,
			// Intermediate (blue square). Québec signage labels blue runs
			// "difficile", which is not the same word as advanced terrain.
			"intermediate": TierIntermediate, "blue": TierIntermediate,
			"bleu": TierIntermediate, "bleue": TierIntermediate,
			"difficile": TierIntermediate, "moyen": TierIntermediate,
			"moyenne": TierIntermediate,
			// Advanced (black diamond).
			"advanced": TierAdvanced, "black": TierAdvanced,
			"noir": TierAdvanced, "noire": TierAdvanced,
			"tres difficile": TierAdvanced, "losange": TierAdvanced,
			// Expert (double black diamond).
			"expert": TierExpert, "extreme": TierExpert,
			"double black": TierExpert, "freeride": TierExpert,
			"extremement difficile": TierExpert, "double losange": TierExpert,
		},
	}
}

// Tier resolves a raw difficulty label to its canonical tier. Labels are
// folded (lowercased, accents stripped, punctuation spaced) before lookup;
// unrecognized labels map to TierUnknown.
func (l Locale) Tier(label string) DifficultyTier {
	folded := foldLabel(label)
	if folded == "" {
		return TierUnknown
	}
	if tier, ok := l.Difficulties[folded]; ok {
		return tier
	}
	return TierUnknown
}
