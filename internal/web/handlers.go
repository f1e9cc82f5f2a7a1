package web

import (
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/errors"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/manager"
	"github.com/hpungsan/charsheet/internal/upload"
)

// multipartOverhead is room for form fields and boundaries around the image part.
const multipartOverhead = 1 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	mgr      *manager.Manager
	view     *manager.StateSurface
	cfg      *config.Config
	log      *logger.Logger
	renderer *Renderer
}

// HandleSheet handles GET /: the editor page as last rendered by the manager.
func (h *Handlers) HandleSheet(w http.ResponseWriter, r *http.Request) {
	h.renderSheet(w, r)
}

// HandleState handles GET /characters.json: stored characters plus the current view.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, h.state())
}

// HandleSubmit handles POST /characters: save the form as the current character.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if _, err := h.mgr.Submit(r.Context(), manager.FormFromLookup(r.PostForm.Get)); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.respond(w, r)
}

// HandleSelect handles POST /select: change the current character; id "" clears it.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	h.mgr.Select(r.Context(), r.PostForm.Get("id"))
	h.respond(w, r)
}

// HandleDeleteConfirm handles GET /delete: ask before deleting the current character.
func (h *Handlers) HandleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	prompt, ok := h.mgr.DeletePrompt()
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderer.renderPage(w, r, "delete", DeletePageData{
		PageData: PageData{Title: "Delete Character", Version: h.renderer.version},
		Prompt:   prompt,
	})
}

// HandleDelete handles POST /delete. The form echoes the prompt it showed, so a
// confirmation only applies to the character the user was asked about.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	ctx := manager.WithAnswer(r.Context(), r.PostForm.Get("prompt"), r.PostForm.Get("confirm") == "yes")
	deleted, err := h.mgr.Delete(ctx)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if deleted {
		h.log.Info("character deleted via web")
	}
	h.respond(w, r)
}

// HandleClear handles POST /clear: blank the form and preview.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	h.mgr.Clear()
	h.respond(w, r)
}

// HandleImage handles POST /image: a multipart upload in field "image".
// No file is a no-op. The response is sent once the picture has been applied.
func (h *Handlers) HandleImage(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.MaxImageBytes
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooBig *http.MaxBytesError
		if stderrors.As(err, &tooBig) {
			h.renderer.renderError(w, r, errors.NewImageTooLarge(maxBytes, r.ContentLength))
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("image")
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			h.respond(w, r)
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid image field"))
		return
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		h.renderer.renderError(w, r, errors.NewImageTooLarge(maxBytes, header.Size))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInternal(err))
		return
	}
	if len(data) == 0 {
		h.respond(w, r)
		return
	}

	h.mgr.UploadImage(r.Context(), upload.NewBytesFile(header.Filename, data))
	h.mgr.Wait()
	h.log.Debug("image uploaded", zap.String("file", header.Filename), zap.Int("bytes", len(data)))
	h.respond(w, r)
}

// respond finishes a mutation: htmx gets the content fragment, JSON clients the
// state, browsers a redirect back to the sheet.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		h.renderSheet(w, r)
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, h.state())
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) renderSheet(w http.ResponseWriter, r *http.Request) {
	view := h.view.Snapshot()
	h.renderer.renderPage(w, r, "sheet", SheetPageData{
		PageData:    PageData{Title: view.Display.Greeting, Version: h.renderer.version},
		View:        view,
		SummaryHTML: renderMarkdown(view.Display.Summary),
		Abilities:   abilityRows(view),
	})
}

// StateResponse is the JSON body of GET /characters.json and of JSON mutations.
type StateResponse struct {
	Characters []character.Character `json:"characters"`
	CurrentID  string                `json:"current_id,omitempty"`
	View       manager.ViewState     `json:"view"`
}

func (h *Handlers) state() StateResponse {
	resp := StateResponse{
		Characters: h.mgr.Characters(),
		View:       h.view.Snapshot(),
	}
	if cur, ok := h.mgr.Current(); ok {
		resp.CurrentID = cur.ID
	}
	return resp
}
