package api

import (
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*
var templateFS embed.FS

var denver = func() *time.Location {
	loc, err := time.LoadLocation("America/Denver")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// newTemplates creates and parses the HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"mountainTime": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return t.In(denver).Format("Mon 3:04 PM MST")
		},
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}
