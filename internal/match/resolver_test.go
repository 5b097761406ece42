package match_test

import (
	"testing"

	"corduroy/internal/match"
	"corduroy/internal/trail"
)

func testCatalog() *match.Catalog {
	return match.BuildCatalog([]trail.Feature{
		{ID: 101, Name: "Edelweiss", Difficulty: "easy", Category: "downhill"},
		{ID: 102, Name: "La Coulée", Reference: "12", Difficulty: "intermediate", Category: "downhill"},
		{ID: 103, Name: "Miami", Difficulty: "intermediate", Category: "downhill"},
		{ID: 104, Name: "Le Sous-Bois du Lac", Difficulty: "advanced", Category: "downhill"},
		{ID: 105, Name: "Brome", Difficulty: "expert", Category: "downhill"},
	})
}

func TestMatchExactTier(t *testing.T) {
	resolver := match.NewResolver(match.French())
	catalog := testCatalog()

	tests := []struct {
		name   string
		record trail.Record
		wantID int64
	}{
		{
			name:   "case insensitive",
			record: trail.Record{Name: "edelweiss"},
			wantID: 101,
		},
		{
			name:   "area suffix stripped before lookup",
			record: trail.Record{Name: "Edelweiss | Versant du Midi"},
			wantID: 101,
		},
		{
			name:   "accents preserved in key",
			record: trail.Record{Name: "La Coulée"},
			wantID: 102,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := resolver.Match(tc.record, catalog)
			if result == nil {
				t.Fatal("expected a match")
			}
			if result.Tier != match.MatchExact {
				t.Fatalf("expected exact tier, got %s", result.Tier)
			}
			if result.Confidence != 1.0 {
				t.Fatalf("expected confidence 1.0, got %f", result.Confidence)
			}
			if result.Entry.ID != tc.wantID {
				t.Fatalf("expected way %d, got %d", tc.wantID, result.Entry.ID)
			}
		})
	}
}

func TestMatchReferenceTier(t *testing.T) {
	resolver := match.NewResolver(match.French())
	catalog := testCatalog()

	result := resolver.Match(trail.Record{Name: "Nouvelle Descente", Reference: "12"}, catalog)
	if result == nil {
		t.Fatal("expected reference match")
	}
	if result.Tier != match.MatchReference {
		t.Fatalf("expected reference tier, got %s", result.Tier)
	}
	if result.Entry.ID != 102 {
		t.Fatalf("expected way 102, got %d", result.Entry.ID)
	}
	if result.Confidence != 1.0 {
		t.Fatalf("expected confidence 1.0, got %f", result.Confidence)
	}
}

func TestMatchFuzzyTier(t *testing.T) {
	resolver := match.NewResolver(match.French())
	catalog := testCatalog()

	t.Run("trailing numeral variant", func(t *testing.T) {
		result := resolver.Match(trail.Record{Name: "Miami 2", Difficulty: "Difficile"}, catalog)
		if result == nil {
			t.Fatal("expected fuzzy match")
		}
		if result.Tier != match.MatchFuzzy {
			t.Fatalf("expected fuzzy tier, got %s", result.Tier)
		}
		if result.Entry.ID != 103 {
			t.Fatalf("expected way 103, got %d", result.Entry.ID)
		}
		if result.Confidence != 1.0 {
			t.Fatalf("expected confidence 1.0, got %f", result.Confidence)
		}
	})

	t.Run("article variants collapse", func(t *testing.T) {
		result := resolver.Match(trail.Record{Name: "Sous-Bois du Lac"}, catalog)
		if result == nil {
			t.Fatal("expected fuzzy match")
		}
		if result.Entry.ID != 104 {
			t.Fatalf("expected way 104, got %d", result.Entry.ID)
		}
	})

	t.Run("difficulty disagreement lowers confidence but not admission", func(t *testing.T) {
		// Normalized names are equal, so the candidate is admitted lexically;
		// the reported confidence is still the composite score.
		result := resolver.Match(trail.Record{Name: "Brome 2", Difficulty: "facile"}, catalog)
		if result == nil {
			t.Fatal("expected fuzzy match")
		}
		if result.Entry.ID != 105 {
			t.Fatalf("expected way 105, got %d", result.Entry.ID)
		}
		if result.Confidence >= 1.0 {
			t.Fatalf("expected reduced confidence, got %f", result.Confidence)
		}
	})
}

func TestMatchFuzzyTieBreaksOnLowestID(t *testing.T) {
	resolver := match.NewResolver(match.French())
	catalog := match.BuildCatalog([]trail.Feature{
		{ID: 9, Name: "Chute", Category: "downhill"},
		{ID: 7, Name: "La Chute", Category: "downhill"},
	})

	// Both entries normalize to "chute" and score identically; the scan
	// order is ascending id, and only a strictly better score replaces the
	// held candidate.
	result := resolver.Match(trail.Record{Name: "Chute 2"}, catalog)
	if result == nil {
		t.Fatal("expected fuzzy match")
	}
	if result.Entry.ID != 7 {
		t.Fatalf("expected lowest way id 7 to win tie, got %d", result.Entry.ID)
	}
}

func TestMatchMisses(t *testing.T) {
	resolver := match.NewResolver(match.French())
	catalog := testCatalog()

	tests := []struct {
		name   string
		record trail.Record
	}{
		{name: "unrelated name", record: trail.Record{Name: "Zigzag"}},
		{name: "empty name", record: trail.Record{Name: ""}},
		{name: "unknown reference", record: trail.Record{Name: "Mystère", Reference: "99"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if result := resolver.Match(tc.record, catalog); result != nil {
				t.Fatalf("expected no match, got way %d at %f", result.Entry.ID, result.Confidence)
			}
		})
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	resolver := match.NewResolver(match.French())

	if result := resolver.Match(trail.Record{Name: "Miami"}, nil); result != nil {
		t.Fatal("nil catalog should never match")
	}
	empty := match.BuildCatalog(nil)
	if result := resolver.Match(trail.Record{Name: "Miami"}, empty); result != nil {
		t.Fatal("empty catalog should never match")
	}
}

func TestWithFuzzyThreshold(t *testing.T) {
	catalog := testCatalog()

	// "Mimi" against "Miami": no lexical relation, score below the default
	// threshold but above a permissive one.
	strict := match.NewResolver(match.French())
	if result := strict.Match(trail.Record{Name: "Mimi"}, catalog); result != nil {
		t.Fatalf("expected no match at default threshold, got way %d at %f",
			result.Entry.ID, result.Confidence)
	}

	loose := match.NewResolver(match.French(), match.WithFuzzyThreshold(0.3))
	result := loose.Match(trail.Record{Name: "Mimi"}, catalog)
	if result == nil {
		t.Fatal("expected match at lowered threshold")
	}
	if result.Entry.ID != 103 {
		t.Fatalf("expected way 103, got %d", result.Entry.ID)
	}
}
