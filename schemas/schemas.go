// Package schemas хранит JSON-схемы событий и документов, встроенные в бинарник.
package schemas

import "embed"

//go:embed events documents
var SchemasFS embed.FS
