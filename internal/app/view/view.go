/*
Package view renders the HTML pages from embedded templates.

Each page template is parsed together with the shared layout, so pages can
define their own "content" block without clashing.
*/
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageIndex    = "index"
	PageLogin    = "login"
	PageRegister = "register"
	PageAdd      = "add"
	PageRemove   = "remove"
)

const layoutFile = "templates/layout.html"

// Renderer writes a named page.
type Renderer interface {
	Render(w io.Writer, page string, data Page) error
}

// Page is the data every template receives.
type Page struct {
	Title    string
	Username string
	Message  string

	// Rows feeds the dashboard.
	Rows []QuoteRow
	// Symbols feeds the remove form.
	Symbols []string
	// Form echoes submitted values back into a re-rendered form.
	Form Form
}

// LoggedIn reports whether the navigation should show the signed-in links.
func (p Page) LoggedIn() bool {
	return p.Username != ""
}

// Form holds values a re-rendered form keeps.
type Form struct {
	Username string
	Symbol   string
}

// QuoteRow is one dashboard line.
type QuoteRow struct {
	Symbol    string
	Name      string
	Price     string
	Change    string
	Direction string
	Available bool
}

// Templates holds one parsed template set per page.
type Templates struct {
	pages map[string]*template.Template
}

var _ Renderer = (*Templates)(nil)

// New parses the embedded templates.
func New() (*Templates, error) {
	return parse(templateFS)
}

func parse(fsys fs.FS) (*Templates, error) {
	entries, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}

	t := &Templates{pages: make(map[string]*template.Template)}
	for _, file := range entries {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")

		tmpl, err := template.New(name).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		t.pages[name] = tmpl
	}
	return t, nil
}

// Render executes page into w. The page is rendered into a buffer first so
// a template error never leaves a half-written response.
func (t *Templates) Render(w io.Writer, page string, data Page) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
