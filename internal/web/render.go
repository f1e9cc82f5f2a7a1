package web

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/errors"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/manager"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// SheetPageData is the template data for the editor page.
type SheetPageData struct {
	PageData
	View        manager.ViewState
	SummaryHTML template.HTML
	Abilities   []AbilityRow
}

// AbilityRow pairs one ability's displayed value with its form input.
type AbilityRow struct {
	Key     string
	Label   string
	Display string
	Input   string
}

// DeletePageData is the template data for the delete confirmation page.
type DeletePageData struct {
	PageData
	Prompt string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

var abilityLabels = map[character.Ability]string{
	character.Strength:     "Strength",
	character.Dexterity:    "Dexterity",
	character.Constitution: "Constitution",
	character.Intelligence: "Intelligence",
	character.Wisdom:       "Wisdom",
	character.Charisma:     "Charisma",
}

func abilityRows(view manager.ViewState) []AbilityRow {
	rows := make([]AbilityRow, 0, len(character.Abilities))
	for _, a := range character.Abilities {
		rows = append(rows, AbilityRow{
			Key:     string(a),
			Label:   abilityLabels[a],
			Display: view.Display.Score(a),
			Input:   view.Form.Score(a),
		})
	}
	return rows
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logger.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logger.Logger) *Renderer {
	funcMap := template.FuncMap{
		"imageURL": imageURL,
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"sheet":  "sheet.html",
		"delete": "delete.html",
		"error":  "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For htmx requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.log.Error("template not found", nil, zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error("template execution error", err, zap.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var sErr *errors.SheetError
	if !stderrors.As(err, &sErr) {
		sErr = errors.NewInternal(err)
	}
	if sErr.Status >= http.StatusInternalServerError {
		r.log.Error("request failed", err, zap.String("path", req.URL.Path))
	}

	status := sErr.Status
	message := sErr.Message

	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    string(sErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark. Raw HTML in
// the source is omitted by goldmark's default renderer.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// imageURL marks an uploaded picture as safe for an img src. Anything that is
// not an image data URL is dropped.
func imageURL(s string) template.URL {
	if !strings.HasPrefix(s, "data:image/") {
		return ""
	}
	return template.URL(s)
}
