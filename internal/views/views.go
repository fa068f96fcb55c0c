// Package views renders the employee pages from the embedded templates.
package views

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"billed/internal/containers"
	"billed/internal/core"
	appweb "billed/web"
)

type (
	LoginPage struct {
		Email string
		Error string
	}

	BillsPage struct {
		Rows  []containers.BillRow
		Modal containers.Modal
	}

	// FileStatus is the outcome of the receipt check shown under the file input.
	FileStatus struct {
		Name  string
		Error string
	}

	NewBillPage struct {
		Form         core.BillForm
		ExpenseTypes []string
		File         FileStatus
		Errors       []string
	}

	ErrorPage struct {
		Heading string
		Message string
	}
)

type Renderer struct {
	t *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	return NewFromFS(appweb.TemplatesFS, "templates/*.html")
}

func NewFromFS(fsys fs.FS, pattern string) (*Renderer, error) {
	t, err := template.ParseFS(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{t: t}, nil
}

// render executes into a buffer first so a failing template never leaves a
// half-written page behind.
func (r *Renderer) render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Login(w io.Writer, p LoginPage) error {
	return r.render(w, "login.html", p)
}

func (r *Renderer) Bills(w io.Writer, p BillsPage) error {
	return r.render(w, "bills.html", p)
}

func (r *Renderer) Modal(w io.Writer, m containers.Modal) error {
	return r.render(w, "modal.html", m)
}

func (r *Renderer) NewBill(w io.Writer, p NewBillPage) error {
	if p.ExpenseTypes == nil {
		p.ExpenseTypes = core.ExpenseTypes
	}
	return r.render(w, "newbill.html", p)
}

func (r *Renderer) FileStatus(w io.Writer, s FileStatus) error {
	return r.render(w, "file_status.html", s)
}

func (r *Renderer) FormErrors(w io.Writer, errs []string) error {
	return r.render(w, "form_errors.html", errs)
}

func (r *Renderer) Error(w io.Writer, p ErrorPage) error {
	return r.render(w, "error.html", p)
}

// ErrorHeading picks the page heading for a store failure: "Erreur 404" or
// "Erreur 500" when the message carries the code, "Erreur" otherwise.
func ErrorHeading(err error) string {
	if err == nil {
		return "Erreur"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "404"):
		return "Erreur 404"
	case strings.Contains(msg, "500"):
		return "Erreur 500"
	default:
		return "Erreur"
	}
}

// NewErrorPage builds the error page for err.
func NewErrorPage(err error) ErrorPage {
	p := ErrorPage{Heading: ErrorHeading(err)}
	if err != nil {
		p.Message = err.Error()
	}
	return p
}
