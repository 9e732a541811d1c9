// Package migrations embeds the SQL files that create the history schema.
package migrations

import "embed"

// FS holds every *.sql migration, applied in lexicographic order.
//
//go:embed *.sql
var FS embed.FS
