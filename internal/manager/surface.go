package manager

import (
	"context"
	"sync"
)

// NoSelectionLabel is the list entry that stands for "no character selected".
const NoSelectionLabel = "Select a Character"

// ListOption is one entry of the selectable character list.
// The sentinel entry has an empty ID.
type ListOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// Surface is whatever shows the sheet to the user: an HTML page, a terminal, a test fake.
// Every method replaces what was previously shown by that surface element.
type Surface interface {
	RenderList(options []ListOption)
	RenderDisplay(d Display)
	// PopulateForm fills every form input. The file input is always emptied.
	PopulateForm(f FormValues)
	// SetPreview shows image in the upload preview; "" clears it.
	SetPreview(image string)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

type answerKey struct{}

type answer struct {
	prompt string
	yes    bool
}

// WithAnswer records the user's answer to prompt on ctx, for surfaces that
// collect confirmation before the request reaches the manager.
func WithAnswer(ctx context.Context, prompt string, yes bool) context.Context {
	return context.WithValue(ctx, answerKey{}, answer{prompt: prompt, yes: yes})
}

// ContextConfirmer approves only when ctx carries a yes for exactly the prompt
// being asked, so a stale confirmation never deletes a different character.
type ContextConfirmer struct{}

func (ContextConfirmer) Confirm(ctx context.Context, prompt string) bool {
	a, ok := ctx.Value(answerKey{}).(answer)
	return ok && a.yes && a.prompt == prompt
}

// ViewState is everything a StateSurface has been told to show.
type ViewState struct {
	Options []ListOption `json:"options"`
	Display Display      `json:"display"`
	Form    FormValues   `json:"form"`
	Preview string       `json:"preview,omitempty"`
}

// StateSurface keeps the last rendered state in memory. Page renderers and
// tests read it back with Snapshot.
type StateSurface struct {
	mu    sync.Mutex
	state ViewState
}

func NewStateSurface() *StateSurface {
	return &StateSurface{}
}

func (s *StateSurface) RenderList(options []ListOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Options = append([]ListOption(nil), options...)
}

func (s *StateSurface) RenderDisplay(d Display) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.Scores = append([]ScoreDisplay(nil), d.Scores...)
	s.state.Display = d
}

func (s *StateSurface) PopulateForm(f FormValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Form = f
}

func (s *StateSurface) SetPreview(image string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Preview = image
}

// Snapshot returns a copy of the current view state.
func (s *StateSurface) Snapshot() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.Options = append([]ListOption(nil), s.state.Options...)
	out.Display.Scores = append([]ScoreDisplay(nil), s.state.Display.Scores...)
	return out
}
