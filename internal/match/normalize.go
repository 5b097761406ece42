package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining diacritical marks via canonical
// decomposition (é -> e, à -> a).
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ligatureReplacer maps ligatures and letters that do not decompose under
// NFD to their base Latin form. Runs after case folding, so only lowercase
// forms are listed.
var ligatureReplacer = strings.NewReplacer(
	"œ", "oe", // œ
	"æ", "ae", // æ
	"ç", "c", // ç
	"ñ", "n", // ñ
	"ø", "o", // ø
	"ß", "ss", // ß
)

// punctReplacer converts apostrophe and dash variants to a single space.
var punctReplacer = strings.NewReplacer(
	"'", " ",
	"’", " ", // ’
	"‘", " ", // ‘
	"`", " ",
	"´", " ", // ´
	"-", " ",
	"–", " ", // –
	"—", " ", // —
	"−", " ", // −
	"_", " ",
)

// commonSuffixes are generic trailing words stripped only by the
// resolver's clean-match admission test, not by the main pipeline.
var commonSuffixes = []string{" prk", " park", " trail", " piste"}

// Normalizer converts raw trail names into their canonical comparison
// form using a locale's article and prefix tables.
type Normalizer struct {
	locale Locale
}

// NewNormalizer returns a normalizer for the given locale.
func NewNormalizer(locale Locale) *Normalizer {
	return &Normalizer{locale: locale}
}

// StripAreaSuffix removes the area designation resort pages append after a
// pipe ("Miami | Versant du Midi" -> "Miami").
func StripAreaSuffix(name string) string {
	if idx := strings.IndexByte(name, '|'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// Normalize runs the full pipeline: area-suffix strip, leading
// article/prefix strip, case fold, ligature and diacritic removal,
// punctuation normalization, embedded article removal, trailing qualifier
// strip, whitespace collapse.
//
// The pipeline runs to a fixed point so Normalize(Normalize(s)) is always
// Normalize(s); a single pass already reaches it for realistic names.
func (n *Normalizer) Normalize(raw string) string {
	current := raw
	for range 8 {
		next := n.pass(current)
		if next == current {
			return next
		}
		current = next
	}
	return current
}

func (n *Normalizer) pass(raw string) string {
	s := StripAreaSuffix(raw)
	s = n.stripPrefix(s)
	s = strings.ToLower(s)
	s = ligatureReplacer.Replace(s)
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = punctReplacer.Replace(s)
	s = stripPunctuation(s)
	s = n.removeArticles(s)
	s = stripTrailingQualifier(s)
	return strings.Join(strings.Fields(s), " ")
}

// stripPrefix removes the first matching leading article or generic noun,
// case-insensitively, at most once.
func (n *Normalizer) stripPrefix(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, prefix := range n.locale.Prefixes {
		if strings.HasPrefix(lower, prefix) {
			return lower[len(prefix):]
		}
	}
	return lower
}

// stripPunctuation drops everything except letters, digits, and whitespace.
func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// removeArticles drops locale article tokens anywhere in the name.
func (n *Normalizer) removeArticles(s string) string {
	fields := strings.Fields(s)
	kept := fields[:0]
	for _, field := range fields {
		if n.isArticle(field) {
			continue
		}
		kept = append(kept, field)
	}
	return strings.Join(kept, " ")
}

func (n *Normalizer) isArticle(token string) bool {
	for _, article := range n.locale.Articles {
		if token == article {
			return true
		}
	}
	return false
}

// stripTrailingQualifier removes a trailing standalone numeral, Roman
// numeral, or "bis"/"ter" qualifier, each rule at most once. A qualifier is
// only stripped when another token remains, so a name that is nothing but a
// numeral survives.
func stripTrailingQualifier(s string) string {
	fields := strings.Fields(s)
	for _, rule := range []func(string) bool{isNumeral, isRomanNumeral, isBisTer} {
		if len(fields) < 2 {
			break
		}
		if rule(fields[len(fields)-1]) {
			fields = fields[:len(fields)-1]
		}
	}
	return strings.Join(fields, " ")
}

func isNumeral(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return token != ""
}

func isRomanNumeral(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		switch r {
		case 'i', 'v', 'x', 'l', 'I', 'V', 'X', 'L':
		default:
			return false
		}
	}
	return true
}

func isBisTer(token string) bool {
	lower := strings.ToLower(token)
	return lower == "bis" || lower == "ter"
}

// StripCommonSuffix removes one trailing generic suffix word ("park",
// "trail", "piste", "prk"). Used by the resolver's clean-match admission
// test only.
func StripCommonSuffix(s string) string {
	for _, suffix := range commonSuffixes {
		if strings.HasSuffix(s, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	return s
}

// foldLabel lowercases a difficulty label, strips accents, and spaces out
// punctuation so vocabulary lookups are spelling-tolerant.
func foldLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return ""
	}
	s = ligatureReplacer.Replace(s)
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = punctReplacer.Replace(s)
	s = stripPunctuation(s)
	return strings.Join(strings.Fields(s), " ")
}
