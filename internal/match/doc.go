// Package match reconciles scraped resort trail records with mapped trail
// features by fuzzy name resolution.
//
// The package is the algorithmic core of corduroy and is deliberately free
// of I/O: it consumes trail.Record values and an immutable Catalog snapshot
// and produces an optional Result. The pieces are:
//
//   - Normalizer: deterministic, idempotent text pipeline producing the
//     canonical comparison form of a trail name
//   - Scorer: composite similarity in [0,1] from edit distance, token
//     overlap, phonetic shape, and optional difficulty agreement
//   - Catalog: dual-indexed (name + reference) read-only snapshot of mapped
//     features with a deterministic ascending-id iteration order
//   - Resolver: tiered matching, Exact then Reference then Fuzzy
//
// A Catalog never changes after Build; refreshing means building a new one
// and swapping the pointer, so Match calls for distinct records are safe to
// run concurrently without locking.
//
// Language-specific behavior (article lists, phonetic reductions,
// difficulty vocabularies) lives in Locale tables rather than control flow
// so additional locales can be added without touching the algorithms.
package match
