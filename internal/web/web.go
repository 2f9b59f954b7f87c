// Package web renders the server-side HTML views. Layouts and views are
// embedded and parsed once at startup, so a malformed template fails the
// service at boot instead of at request time.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/incontext-app/incontext/internal/flash"
	"github.com/incontext-app/incontext/internal/identity"
	"github.com/incontext-app/incontext/pkg/logging"
)

//go:embed templates/layouts/*.html
var layoutFS embed.FS

//go:embed templates/views
var viewFS embed.FS

const layoutName = "base.html"

var views = []string{
	"agents/index.html",
	"agents/create.html",
	"agents/update.html",
	"auth/login.html",
	"auth/register.html",
	"conversations/index.html",
	"conversations/create.html",
	"conversations/detail.html",
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02.01.2006")
	},
}

// PageData is the root data passed to every rendered view.
type PageData struct {
	Title   string
	User    *identity.Identity
	Flashes []flash.Message
	Data    any
}

// Renderer holds the pre-parsed view templates.
type Renderer struct {
	views  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses the embedded layouts and views into a Renderer.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	layouts, err := template.New(layoutName).Funcs(funcs).ParseFS(layoutFS, "templates/layouts/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	viewSub, err := fs.Sub(viewFS, "templates/views")
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*template.Template, len(views))
	for _, view := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", view, err)
		}
		if _, err := t.ParseFS(viewSub, view); err != nil {
			return nil, fmt.Errorf("parse view %s: %w", view, err)
		}
		parsed[view] = t
	}

	return &Renderer{
		views:  parsed,
		logger: logging.WithSystem(logger, "web"),
	}, nil
}

// Render executes the given view inside the base layout, populating the
// requesting user from the context and consuming any pending flash messages.
func (rn *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, view, title string, data any) {
	t, ok := rn.views[view]
	if !ok {
		rn.logger.Error("view not registered", "view", view)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page := PageData{
		Title:   title,
		User:    identity.FromContext(r.Context()),
		Flashes: flash.Pop(w, r),
		Data:    data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, layoutName, page); err != nil {
		rn.logger.Error("render failed", "view", view, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
