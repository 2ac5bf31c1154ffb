// Package itemboard holds the assets compiled into the web binary.
package itemboard

import "embed"

//go:embed static
var EmbeddedStatic embed.FS

//go:embed views
var EmbeddedViews embed.FS
