// Package migrations contiene el esquema versionado que aplica goose.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
