// Package mcp serves section lookups to MCP clients over stdio.
package mcp
