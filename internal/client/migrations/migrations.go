// Package migrations embeds goose migrations for the client-side
// credential database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
