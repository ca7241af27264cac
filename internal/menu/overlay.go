package menu

import "fmt"

// EscapeKey toggles the overlay
const EscapeKey = "Escape"

// Renderer draws the overlay.
type Renderer interface {
	Show(rows []Row)
	Hide()
}

// Overlay is the hidden/visible state of the menu. Rows are rebuilt from the
// model each time the overlay is revealed.
type Overlay struct {
	model    *Model
	renderer Renderer
	visible  bool
	shown    []*Entry
	hooks    []func() bool
}

// NewOverlay creates a hidden overlay
func NewOverlay(model *Model, renderer Renderer) *Overlay {
	return &Overlay{model: model, renderer: renderer}
}

// AddEscapeHook registers fn to see Escape before the overlay does. Returning
// true consumes the key.
func (o *Overlay) AddEscapeHook(fn func() bool) {
	o.hooks = append(o.hooks, fn)
}

// HandleKey processes a key press and reports whether it was consumed.
func (o *Overlay) HandleKey(key string) bool {
	if key != EscapeKey {
		return false
	}
	for _, hook := range o.hooks {
		if hook() {
			return true
		}
	}
	o.Toggle()
	return true
}

// Toggle flips visibility
func (o *Overlay) Toggle() {
	if o.visible {
		o.Hide()
	} else {
		o.Show()
	}
}

// Show rebuilds the rows from the model and reveals the overlay.
func (o *Overlay) Show() {
	o.visible = true
	o.render()
}

// Hide conceals the overlay
func (o *Overlay) Hide() {
	o.visible = false
	o.shown = nil
	o.renderer.Hide()
}

// Visible reports whether the overlay is shown
func (o *Overlay) Visible() bool {
	return o.visible
}

// Refresh re-renders a visible overlay, e.g. after a language change.
func (o *Overlay) Refresh() {
	if o.visible {
		o.render()
	}
}

// Select activates the row at index i of the currently shown rows. The
// overlay is hidden before the action runs.
func (o *Overlay) Select(i int) error {
	if !o.visible {
		return fmt.Errorf("menu is hidden")
	}
	if i < 0 || i >= len(o.shown) {
		return fmt.Errorf("menu row %d out of range", i)
	}
	entry := o.shown[i]
	if entry.Action == nil {
		return fmt.Errorf("menu row %d is not selectable", i)
	}

	o.Hide()
	entry.Action()
	return nil
}

func (o *Overlay) render() {
	o.shown = o.model.Visible()
	o.renderer.Show(o.model.Rows())
}
