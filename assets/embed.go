// Package assets bundles files shipped inside the server binary.
package assets

import "embed"

// Migrations holds the SQLite schema scripts under sql/, applied in name order.
//
//go:embed sql/*.sql
var Migrations embed.FS
