// Package poller drives the periodic scrape-match-persist cycle.
//
// The manager keeps the current trail catalog in an atomic pointer so HTTP
// handlers and CLI status queries read it without locking while the refresh
// goroutine swaps in rebuilt catalogs. Each poll scrapes the conditions page,
// resolves every trail row against the catalog, persists the cycle, and
// notifies on open/close transitions relative to the previous cycle.
package poller
