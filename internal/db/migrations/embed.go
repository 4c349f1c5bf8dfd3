package migrations

import "embed"

// SQLite holds the golang-migrate files applied on startup to SQLite stores.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the plain SQL files applied by cmd/migrate to the hosted
// Postgres database, in lexical order.
//
//go:embed postgres/*.sql
var Postgres embed.FS
