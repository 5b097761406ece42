// Package logs reads the daemon log file for the CLI, with optional
// follow-mode polling.
package logs
