package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// parseTemplates parses the embedded page templates. Templates are named by
// their base filename (login.tmpl, stores.tmpl, ...).
func parseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.tmpl")
}
