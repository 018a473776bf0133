// Package migrations embeds the migration scripts, one directory per goose dialect.
package migrations

import "embed"

// FS is the embedded filesystem
//
//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
