// Package cli implements the interactive command-line interface of the
// FICOM Integration Testing client: a small REPL for signing up, logging
// in, and inspecting the authenticated profile.
package cli
