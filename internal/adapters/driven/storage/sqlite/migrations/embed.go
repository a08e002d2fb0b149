// Package migrations holds the SQLite schema as numbered NNN_name.up.sql
// files. The store applies them in order and records each version in
// schema_migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
