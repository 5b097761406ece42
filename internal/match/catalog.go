package match

import (
	"sort"
	"strings"

	"corduroy/internal/trail"
)

// referenceKeyPrefix namespaces reference-code keys in the shared index so
// they can never collide with a trail name.
const referenceKeyPrefix = "ref:"

// Catalog is an immutable snapshot of mapped trail features indexed for
// matching. One logical entry may be reachable through two keys (name and
// reference); both point at the same CatalogEntry.
//
// Build never fails: features with an unrecognized category or no usable
// name are skipped, everything else is included even without geometry.
// When two features produce the same name key the later one wins; the
// earlier entry stays reachable through its reference key if it has one.
// This last-write-wins rule is deliberate and matches the upstream feed,
// where duplicate names mark resurveyed ways.
type Catalog struct {
	index   map[string]*trail.CatalogEntry
	ordered []*trail.CatalogEntry
}

// BuildCatalog constructs a catalog snapshot from raw mapped features.
func BuildCatalog(features []trail.Feature) *Catalog {
	catalog := &Catalog{index: make(map[string]*trail.CatalogEntry, len(features)*2)}

	for _, feature := range features {
		category, ok := trail.ParseCategory(feature.Category)
		if !ok {
			continue
		}
		name := firstNonEmpty(feature.Name, feature.AltName, feature.Reference)
		if name == "" {
			continue
		}
		reference := strings.TrimSpace(feature.Reference)

		entry := &trail.CatalogEntry{
			ID:         feature.ID,
			Name:       name,
			Reference:  reference,
			Difficulty: strings.TrimSpace(feature.Difficulty),
			Category:   category,
			Geometry:   feature.Geometry,
		}

		catalog.index[strings.ToLower(name)] = entry
		if reference != "" {
			catalog.index[referenceKeyPrefix+reference] = entry
		}
	}

	// Fuzzy matching iterates only the name-indexed entries, in ascending
	// id order, so tie-breaking is reproducible rather than an accident of
	// map iteration.
	for key, entry := range catalog.index {
		if strings.HasPrefix(key, referenceKeyPrefix) {
			continue
		}
		catalog.ordered = append(catalog.ordered, entry)
	}
	sort.Slice(catalog.ordered, func(i, j int) bool {
		return catalog.ordered[i].ID < catalog.ordered[j].ID
	})

	return catalog
}

// Len reports the number of name-indexed entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ordered)
}

// Lookup returns the entry under the given lowercased-name key.
func (c *Catalog) Lookup(nameKey string) (*trail.CatalogEntry, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.index[nameKey]
	if !ok || strings.HasPrefix(nameKey, referenceKeyPrefix) {
		return nil, false
	}
	return entry, ok
}

// LookupReference returns the entry filed under a trail reference code.
func (c *Catalog) LookupReference(reference string) (*trail.CatalogEntry, bool) {
	if c == nil {
		return nil, false
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, false
	}
	entry, ok := c.index[referenceKeyPrefix+reference]
	return entry, ok
}

// Entries returns the name-indexed entries in ascending id order. The
// returned slice is shared; callers must not mutate it.
func (c *Catalog) Entries() []*trail.CatalogEntry {
	if c == nil {
		return nil
	}
	return c.ordered
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
