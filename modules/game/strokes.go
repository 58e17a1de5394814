package game

import (
	domain "github.com/example/drawing-game-demo/domain/game"
)

// StrokeHistory is the stroke buffer of a room. Active strokes are what the
// canvas shows; history is the snapshot taken at the last start or update,
// which is what undo and redo walk over.
type StrokeHistory struct {
	active  []domain.Stroke
	history []domain.Stroke
	drawing bool
}

// Start begins a new stroke at offset.
func (h *StrokeHistory) Start(offset domain.Offset) {
	h.active = append(h.active, domain.Stroke{Offsets: []domain.Offset{offset}})
	h.drawing = true
	h.snapshot()
}

// Update extends the in-progress stroke. It reports false when no stroke is in progress.
func (h *StrokeHistory) Update(offset domain.Offset) bool {
	if !h.drawing || len(h.active) == 0 {
		return false
	}
	last := &h.active[len(h.active)-1]
	last.Offsets = append(last.Offsets, offset)
	h.snapshot()
	return true
}

// End closes the in-progress stroke.
func (h *StrokeHistory) End() {
	h.drawing = false
}

// Undo removes the last active stroke and ends any in-progress stroke.
func (h *StrokeHistory) Undo() bool {
	h.drawing = false
	if len(h.active) == 0 || len(h.history) == 0 {
		return false
	}
	h.active = h.active[:len(h.active)-1]
	return true
}

// Redo restores the history stroke at the position right after the active ones.
func (h *StrokeHistory) Redo() bool {
	if len(h.active) >= len(h.history) {
		return false
	}
	h.active = append(h.active, h.history[len(h.active)])
	return true
}

// Reset discards every stroke.
func (h *StrokeHistory) Reset() {
	h.active = nil
	h.history = nil
	h.drawing = false
}

// Drawing reports whether a stroke is in progress.
func (h *StrokeHistory) Drawing() bool {
	return h.drawing
}

// Len returns the number of active and history strokes.
func (h *StrokeHistory) Len() (active, history int) {
	return len(h.active), len(h.history)
}

// Active returns a deep copy of the active strokes.
func (h *StrokeHistory) Active() []domain.Stroke {
	strokes := make([]domain.Stroke, len(h.active))
	for i, stroke := range h.active {
		offsets := make([]domain.Offset, len(stroke.Offsets))
		copy(offsets, stroke.Offsets)
		strokes[i] = domain.Stroke{Offsets: offsets}
	}
	return strokes
}

// snapshot copies the active stroke list into history. Offsets of the
// in-progress stroke are only ever appended past the copied length.
func (h *StrokeHistory) snapshot() {
	h.history = append(h.history[:0], h.active...)
}
