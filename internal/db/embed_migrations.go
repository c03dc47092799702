package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// cmd/migrate applies them to Postgres; OpenSQLite applies the up files directly.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
