// Package migrations содержит схему локального хранилища клиента.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
