// Package assets embeds the editor front end built by cmd/minify.
package assets

import _ "embed"

// Index is the single page editor application.
//
//go:embed index.html
var Index []byte
