// Package service hosts the leave ledger MCP server over stdio or
// streamable HTTP.
package service
