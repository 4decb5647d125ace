// Package domain translates MCP tool calls into leave ledger operations.
//
// Every tool except login resolves its caller from a session token, runs
// one operation, and returns a wire.Envelope as structured content. Domain
// failures are reported inside the envelope rather than as protocol errors.
package domain
