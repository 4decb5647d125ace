package migrations

import "embed"

// FS contains embedded SQLite migrations for leave storage.
//
//go:embed *.sql
var FS embed.FS
