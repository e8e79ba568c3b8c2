package editor

// defaultMaxHistory bounds the undo log when no cap is given.
const defaultMaxHistory = 1000

// HistoryStack holds the undo and redo logs of whole-buffer actions.
// It is plain data owned by a Session and is not safe for concurrent
// use on its own.
type HistoryStack struct {
	undo []Action
	redo []Action
	max  int
}

// NewHistoryStack creates a history bounded to maxEntries actions.
// Values <= 0 select the default cap.
func NewHistoryStack(maxEntries int) *HistoryStack {
	if maxEntries <= 0 {
		maxEntries = defaultMaxHistory
	}
	return &HistoryStack{max: maxEntries}
}

// Push appends a new action to the undo log and clears the redo log:
// new edits invalidate redo history. Oldest entries are dropped past
// the cap.
func (h *HistoryStack) Push(a Action) {
	h.undo = append(h.undo, a)
	h.redo = nil
	if len(h.undo) > h.max {
		h.undo = h.undo[len(h.undo)-h.max:]
	}
}

// Undo moves the most recent action to the redo log and returns it.
func (h *HistoryStack) Undo() (Action, bool) {
	if len(h.undo) == 0 {
		return Action{}, false
	}
	a := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, a)
	return a, true
}

// Redo moves the most recently undone action back to the undo log and
// returns it.
func (h *HistoryStack) Redo() (Action, bool) {
	if len(h.redo) == 0 {
		return Action{}, false
	}
	a := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, a)
	return a, true
}

func (h *HistoryStack) CanUndo() bool { return len(h.undo) > 0 }
func (h *HistoryStack) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen and RedoLen report the log sizes.
func (h *HistoryStack) UndoLen() int { return len(h.undo) }
func (h *HistoryStack) RedoLen() int { return len(h.redo) }

// Clear empties both logs. Used when a version load invalidates the
// history: undo cannot cross a version boundary.
func (h *HistoryStack) Clear() {
	h.undo = nil
	h.redo = nil
}
