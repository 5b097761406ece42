// Package daemon ties the poller, store, and HTTP API into the long-running
// corduroyd process. A file lock under the data directory enforces a single
// instance per machine.
package daemon
