// Package views holds the portal's server-rendered pages.
package views

import (
	"embed"
	"html/template"
	"strconv"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available to every page.
var Funcs = template.FuncMap{
	"float": func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	},
	"int": func(v *int) string {
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	},
}

// Parse compiles every page template.
func Parse() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}

// Install sets the parsed pages as r's HTML renderer.
func Install(r *gin.Engine) error {
	tmpl, err := Parse()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}
