// Package store persists poll cycles and per-trail status rows in SQLite.
//
// Each poll of the conditions page becomes one cycle row plus one status row
// per scraped trail, carrying the match outcome alongside the scraped fields
// so history queries can follow a trail across cycles by OSM way.
package store
