// Package migrations содержит SQL-схему для PostgreSQL и SQLite.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var Files embed.FS
