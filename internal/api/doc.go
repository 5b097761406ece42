// Package api defines the JSON payloads served by the daemon HTTP API and
// consumed by the CLI. Keeping the wire types here avoids importing daemon
// internals from command code.
package api
