package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/isdelr/pinpass/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	Signup     = "signup"
	SignIn     = "sign_in"
	Dashboard  = "dashboard"
	RecoverPIN = "recover_pin"
	Terms      = "terms"
)

var titles = map[string]string{
	Signup:     "Sign up",
	SignIn:     "Sign in",
	Dashboard:  "Dashboard",
	RecoverPIN: "Recover PIN",
	Terms:      "Terms and conditions",
}

// FormValues echoes submitted fields back into a re-rendered form. It never
// carries the PIN.
type FormValues struct {
	Name  string
	Email string
	DOB   string
	Phone string
}

// Data is passed to every page.
type Data struct {
	Title   string
	Error   string
	Success string
	Form    FormValues
	Profile *models.Profile
}

// Renderer executes the embedded page templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(titles))}
	for name := range titles {
		tpl, err := template.ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %q: %w", name, err)
		}
		r.templates[name] = tpl
	}
	return r, nil
}

// Render writes page name with the given status. The page is rendered into
// a buffer first so a template failure still produces a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Data) error {
	tpl, ok := r.templates[name]
	if !ok {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return fmt.Errorf("template %q not found", name)
	}
	if data.Title == "" {
		data.Title = titles[name]
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return fmt.Errorf("execute template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
