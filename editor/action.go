package editor

import (
	"context"
	"time"
)

// ActionType tags an entry in the edit history. Only whole-buffer
// replacement exists today; finer-grained variants can be added without
// changing the undo/redo contract.
type ActionType string

const ActionReplace ActionType = "replace"

// Action records a single edit. Each action snapshots the entire buffer
// before and after the edit; Start/End cover the previous buffer's full
// length.
type Action struct {
	Type            ActionType `json:"type"`
	Timestamp       time.Time  `json:"timestamp"`
	Start           int        `json:"start"`
	End             int        `json:"end"`
	Content         string     `json:"content"`
	OriginalContent string     `json:"originalContent"`
}

// Range is a character span within the document.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Selection is the user's current selection, nil when collapsed.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FileChange is a collaborator-proposed edit awaiting accept/reject.
// It is never merged into the live buffer by the session itself.
type FileChange struct {
	ID              string    `json:"id"`
	Author          string    `json:"author"`
	Timestamp       time.Time `json:"timestamp"`
	Range           Range     `json:"range"`
	ProposedContent string    `json:"proposedContent"`
	Accepted        bool      `json:"accepted"`
}

// Snapshot is a named historical copy of the document, as returned by
// the injected version loader.
type Snapshot struct {
	Content   string
	Version   string
	CreatedAt time.Time
}

// SaveFunc persists the current buffer. Invoked by manual save and by
// the autosave scheduler; a non-nil error counts as a failed attempt.
type SaveFunc func(ctx context.Context, content, version string) error

// LoadVersionFunc fetches a named historical snapshot.
type LoadVersionFunc func(ctx context.Context, versionID string) (*Snapshot, error)

// ErrorSink receives unrecoverable failures (load failure, exhausted
// autosave retries). The session never returns errors from its public
// API; everything funnels through the sink.
type ErrorSink func(msg string)
