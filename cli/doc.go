// Package cli implements the command-line interface for seatwatch.
//
// The cli package provides:
// - Section, seat, listing and term lookups from the terminal
// - Markdown rendering of section records with a scrollable pager
// - The HTTP server and MCP server entry points
package cli
