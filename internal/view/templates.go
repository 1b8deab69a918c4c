package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/vivionix/vivionix-admin/internal/shared"
	"github.com/vivionix/vivionix-admin/web"
)

// Engine renders HTML templates. Every page is parsed into its own copy of the
// layouts and partials so pages can each define "content" without colliding.
type Engine struct {
	pages   map[string]*template.Template
	company string
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	User        string
	Company     string
	Data        any
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	return newEngine(web.Templates)
}

func newEngine(fsys fs.FS) (*Engine, error) {
	base, err := template.New("root").Funcs(Funcs()).ParseFS(fsys, "templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse layouts: %w", err)
	}
	engine := &Engine{pages: make(map[string]*template.Template), company: "Vivionix"}
	for _, dir := range []string{"pages", "documents"} {
		files, err := fs.Glob(fsys, "templates/"+dir+"/*.html")
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			clone, err := base.Clone()
			if err != nil {
				return nil, err
			}
			tpl, err := clone.ParseFS(fsys, file)
			if err != nil {
				return nil, fmt.Errorf("view: parse %s: %w", file, err)
			}
			engine.pages[dir+"/"+path.Base(file)] = tpl
		}
	}
	return engine, nil
}

// SetCompany sets the name shown in the header and on documents.
func (e *Engine) SetCompany(name string) {
	e.company = name
}

// Has reports whether a page template exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[name]
	return ok
}

// Render executes a page inside its layout and writes it as HTML. The page is
// buffered so template errors never produce half a document.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	var buf bytes.Buffer
	if err := e.Execute(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Execute writes the named page into w without touching HTTP headers.
func (e *Engine) Execute(w io.Writer, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	if data.Company == "" {
		data.Company = e.company
	}
	layout := "base"
	if strings.HasPrefix(name, "documents/") {
		layout = "document"
	}
	return tpl.ExecuteTemplate(w, layout, data)
}
