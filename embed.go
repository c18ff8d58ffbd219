package portfolio

import "embed"

// migrationFiles holds the schema for both SQL dialects:
// migrations/sqlite and migrations/postgres.
//
//go:embed migrations
var migrationFiles embed.FS
