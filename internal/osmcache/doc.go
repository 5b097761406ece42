// Package osmcache persists fetched OpenStreetMap trail features to a JSON
// file so daemon restarts do not hammer the Overpass API. Mapped trail
// data changes rarely; the cache carries a fetched-at timestamp and
// callers decide staleness through a TTL.
package osmcache
