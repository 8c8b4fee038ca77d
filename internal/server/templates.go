package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"
)

//go:embed web/templates web/static
var rawContent embed.FS

// staticContent serves /static/ straight from the embedded filesystem.
var staticContent fs.FS

func init() {
	var err error
	staticContent, err = fs.Sub(rawContent, "web/static")
	if err != nil {
		panic(fmt.Sprintf("failed to create virtual filesystem for static content: %v", err))
	}
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// loadTemplates parses every page template from the embedded filesystem.
func loadTemplates(funcs template.FuncMap) (map[string]*template.Template, error) {
	names, err := fs.Glob(rawContent, "web/templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing templates: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no templates found")
	}

	templates := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := path.Base(name)
		tmpl, err := template.New(base).Funcs(funcs).ParseFS(rawContent, name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", base, err)
		}
		templates[base] = tmpl
	}
	return templates, nil
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	return tmpl.Execute(w, data)
}
