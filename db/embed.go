// Package db embeds the SQL migrations and seed files so the binaries
// can run them without shipping the tree separately.
package db

import "embed"

//go:embed migrations seeds
var FS embed.FS

const (
	// MigrationsDir is the embedded path holding *.up.sql / *.down.sql pairs.
	MigrationsDir = "migrations"
	// SeedsDir is the embedded path holding idempotent seed files.
	SeedsDir = "seeds"
)
