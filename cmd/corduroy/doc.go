// Command corduroy is the CLI companion to corduroyd. It inspects the trail
// catalog, the latest scraped conditions, and the daemon status, and can run
// ad-hoc name matches without a daemon.
package main
