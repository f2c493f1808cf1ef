// Package db holds the database migrations.
package db

import "embed"

// MigrationDir is the directory of Migrations holding the goose migrations.
const MigrationDir = "migration"

// Migrations is the embedded set of migrations.
//
//go:embed migration/*.sql
var Migrations embed.FS
