// Package version holds the single release identity reported by the
// health endpoint, the MCP handshake, and the CLI.
package version

const Version = "1.0.0"
