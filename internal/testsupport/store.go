package testsupport

import (
	"testing"

	"corduroy/internal/config"
	"corduroy/internal/store"
	"corduroy/internal/trail"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// Features returns a small fixed set of mapped trails for catalog tests.
func Features() []trail.Feature {
	return []trail.Feature{
		{ID: 101, Name: "Edelweiss", Difficulty: "easy", Category: "downhill"},
		{ID: 102, Name: "La Coulée", Reference: "12", Difficulty: "intermediate", Category: "downhill"},
		{ID: 103, Name: "Miami", Difficulty: "intermediate", Category: "downhill"},
		{ID: 104, Name: "Le Sous-Bois du Lac", Difficulty: "advanced", Category: "downhill"},
		{ID: 105, Name: "Brome", Difficulty: "expert", Category: "downhill"},
	}
}
