// Package db embeds the storefront schema and seed data.
package db

import _ "embed"

// Schema contains the idempotent DDL for every storefront table.
//
//go:embed migrations/001_schema.sql
var Schema string

// Catalog is the default seed catalog used by cmd/seed-db.
//
//go:embed seed/catalog.json
var Catalog []byte
