// Package web embeds the page template and its static assets.
package web

import "embed"

//go:embed templates static
var FS embed.FS

// IndexTemplate is the page template path inside FS.
const IndexTemplate = "templates/index.html"
