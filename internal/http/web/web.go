// Package web holds the HTML pages served by the app.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every page together with the shared layout blocks.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(files, "templates/*.html")
}
