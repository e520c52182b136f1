// Package schema embeds the JSON schemas of specoracle's file formats.
package schema

import "embed"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
