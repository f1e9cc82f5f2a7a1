// Package manager owns the character collection, the current selection, and
// keeps a Surface in sync with them as interaction events arrive.
package manager

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/charsheet/internal/character"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/metrics"
	"github.com/hpungsan/charsheet/internal/upload"
)

// Repository persists the whole collection at once.
type Repository interface {
	LoadAll(ctx context.Context) ([]character.Character, error)
	SaveAll(ctx context.Context, chars []character.Character) error
}

// Options configure a Manager. Zero values get working defaults.
type Options struct {
	Surface   Surface
	Confirmer Confirmer
	Decoder   upload.Decoder
	NewID     func() string
	Logger    *logger.Logger
}

// Manager is the character record manager. All handlers and image decode
// completions run one at a time.
type Manager struct {
	mu sync.Mutex

	repo      Repository
	surface   Surface
	confirmer Confirmer
	decoder   upload.Decoder
	newID     func() string
	log       *logger.Logger

	// items mirrors the last successful SaveAll (or the initial load).
	items []character.Character
	// current is a working copy; it may hold an unsaved image or a nameless record.
	current *character.Character

	pending sync.WaitGroup
}

// New loads the collection and renders the no-selection state.
// A load failure (including a malformed blob) fails construction.
func New(ctx context.Context, repo Repository, opts Options) (*Manager, error) {
	m := &Manager{
		repo:      repo,
		surface:   opts.Surface,
		confirmer: opts.Confirmer,
		decoder:   opts.Decoder,
		newID:     opts.NewID,
		log:       opts.Logger,
	}
	if m.surface == nil {
		m.surface = NewStateSurface()
	}
	if m.confirmer == nil {
		m.confirmer = ContextConfirmer{}
	}
	if m.decoder == nil {
		m.decoder = upload.DataURLDecoder{}
	}
	if m.newID == nil {
		m.newID = generateULID
	}
	if m.log == nil {
		m.log = logger.NewNop()
	}

	items, err := repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	m.items = items
	m.log.Info("characters loaded", zap.Int("count", len(items)))

	m.renderList()
	m.renderDisplay()
	m.surface.PopulateForm(FormValues{})
	return m, nil
}

// Submit saves the form as the current character (or a new one) and selects it.
// The current character's image is carried over; the preview is cleared.
func (m *Manager) Submit(ctx context.Context, form FormValues) (character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.EventsTotal.WithLabelValues(metrics.EventSubmit).Inc()

	c := ParseForm(form)
	if m.current != nil {
		c.ID = m.current.ID
		c.Image = m.current.Image
		c.Extra = m.current.Clone().Extra
	} else {
		c.ID = m.newID()
	}

	if err := m.commit(ctx, character.Upsert(m.items, c)); err != nil {
		m.log.Error("submit failed", err, zap.String("id", c.ID))
		return character.Character{}, err
	}

	m.selectID(c.ID)
	m.renderList()
	m.surface.SetPreview("")
	return c.Clone(), nil
}

// Select makes the character with id current. An empty or unknown id clears the selection.
func (m *Manager) Select(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.EventsTotal.WithLabelValues(metrics.EventSelect).Inc()

	m.selectID(id)
	m.renderList()
}

// Delete removes the current character once the Confirmer approves.
// It reports whether a character was deleted; no selection or a declined
// confirmation are silent no-ops.
func (m *Manager) Delete(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.EventsTotal.WithLabelValues(metrics.EventDelete).Inc()

	if m.current == nil {
		return false, nil
	}
	prompt := deletePrompt(m.current)
	if !m.confirmer.Confirm(ctx, prompt) {
		m.log.Debug("delete declined", zap.String("id", m.current.ID))
		return false, nil
	}

	id := m.current.ID
	if err := m.commit(ctx, character.Remove(m.items, id)); err != nil {
		m.log.Error("delete failed", err, zap.String("id", id))
		return false, err
	}

	m.current = nil
	m.renderList()
	m.renderDisplay()
	m.log.Info("character deleted", zap.String("id", id))
	return true, nil
}

// Clear blanks the form and the preview. Selection and stored records are untouched.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics.EventsTotal.WithLabelValues(metrics.EventClear).Inc()

	m.surface.PopulateForm(FormValues{})
	m.surface.SetPreview("")
}

// UploadImage starts decoding f in the background and returns immediately.
// A nil f is a no-op. On completion the image goes to whichever character is
// current at that moment, or to a new nameless character if none is. The
// result is persisted only when that character has both names.
func (m *Manager) UploadImage(ctx context.Context, f upload.File) {
	if f == nil {
		return
	}
	metrics.EventsTotal.WithLabelValues(metrics.EventImage).Inc()

	// Decodes are not cancellable once started.
	ctx = context.WithoutCancel(ctx)
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()

		start := time.Now()
		payload, err := m.decoder.Decode(ctx, f)
		metrics.ImageDecodeSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			m.log.Error("image decode failed", err, zap.String("file", f.Name()))
			return
		}
		m.applyImage(ctx, payload)
	}()
}

func (m *Manager) applyImage(ctx context.Context, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.surface.SetPreview(payload)
	if m.current == nil {
		c := character.Blank(m.newID())
		m.current = &c
	}
	m.current.Image = payload

	if !m.current.HasName() {
		m.log.Debug("image held until the character is named", zap.String("id", m.current.ID))
		return
	}
	if err := m.commit(ctx, character.Upsert(m.items, m.current.Clone())); err != nil {
		m.log.Error("image save failed", err, zap.String("id", m.current.ID))
	}
}

// Wait blocks until every in-flight image decode has completed.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Current returns a copy of the current character, if any.
func (m *Manager) Current() (character.Character, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return character.Character{}, false
	}
	return m.current.Clone(), true
}

// Characters returns a copy of the stored collection in order.
func (m *Manager) Characters() []character.Character {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]character.Character, len(m.items))
	for i, c := range m.items {
		out[i] = c.Clone()
	}
	return out
}

// DeletePrompt returns the confirmation question Delete would ask right now.
func (m *Manager) DeletePrompt() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", false
	}
	return deletePrompt(m.current), true
}

// commit persists next and adopts it only if the write succeeded.
func (m *Manager) commit(ctx context.Context, next []character.Character) error {
	if err := m.repo.SaveAll(ctx, next); err != nil {
		return err
	}
	m.items = next
	return nil
}

// selectID resolves the selection and refreshes the display and the form.
func (m *Manager) selectID(id string) {
	if c, ok := character.Find(m.items, id); ok {
		c = c.Clone()
		m.current = &c
	} else {
		m.current = nil
	}
	m.renderDisplay()
	m.surface.PopulateForm(BuildForm(m.current))
	m.surface.SetPreview(m.currentImage())
}

func (m *Manager) renderList() {
	id := ""
	if m.current != nil {
		id = m.current.ID
	}
	m.surface.RenderList(buildList(m.items, id))
}

func (m *Manager) renderDisplay() {
	m.surface.RenderDisplay(BuildDisplay(m.current))
	m.surface.SetPreview(m.currentImage())
}

func (m *Manager) currentImage() string {
	if m.current == nil {
		return ""
	}
	return m.current.Image
}

func deletePrompt(c *character.Character) string {
	return "Delete " + c.FullName() + "?"
}

// generateULID creates a new ULID using crypto/rand.
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}
