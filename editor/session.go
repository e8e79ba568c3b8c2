// Package editor implements the editing-session core of the document
// portal: a single document's edit buffer with undo/redo history,
// autosave with bounded retry, collaborative change proposals, and
// historical version loading. Persistence and snapshot retrieval are
// injected; the session never performs network I/O of its own.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Session owns the live edit state for one document. All operations are
// safe for concurrent use and never return errors; failures are
// reported through the injected error sink.
type Session struct {
	docID string

	mu        sync.Mutex
	content   string
	baseline  string // content as of the last successful save or load
	dirty     bool
	lastSaved time.Time
	version   string
	cursor    int
	selection *Selection

	history *HistoryStack
	changes *ChangeProposalTracker

	save     SaveFunc
	load     LoadVersionFunc
	errors   ErrorSink
	autosave *AutoSaveScheduler

	saving  bool
	loading bool
	closed  bool
}

// NewSession opens a session for a document seeded with its current
// content and version. An empty version starts at InitialVersion.
// The error sink may be nil.
func NewSession(docID, content, version string, save SaveFunc, load LoadVersionFunc, sink ErrorSink, cfg AutoSaveConfig) *Session {
	if version == "" {
		version = InitialVersion
	}
	s := &Session{
		docID:     docID,
		content:   content,
		baseline:  content,
		version:   version,
		lastSaved: time.Now(),
		history:   NewHistoryStack(0),
		changes:   NewChangeProposalTracker(),
		save:      save,
		load:      load,
		errors:    sink,
	}
	s.autosave = newAutoSaveScheduler(cfg, s.autosaveAttempt, func(err error) {
		s.reportf("autosave %s: giving up after %d attempts: %v", docID, cfg.MaxRetries+1, err)
	})
	return s
}

// UpdateContent replaces the buffer, records the edit in the undo log
// (clearing the redo log), and recomputes dirtiness against the
// baseline. A dirty result arms the autosave timer; returning to the
// baseline cancels it.
func (s *Session) UpdateContent(content string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	prev := s.content
	s.history.Push(Action{
		Type:            ActionReplace,
		Timestamp:       time.Now(),
		Start:           0,
		End:             len(prev),
		Content:         content,
		OriginalContent: prev,
	})
	s.content = content
	s.dirty = content != s.baseline
	dirty := s.dirty
	s.mu.Unlock()

	if dirty {
		s.autosave.Arm()
	} else {
		s.autosave.Cancel()
	}
}

// Save persists the buffer through the injected persistence function.
// No-op when clean, closed, or another save or load is in flight.
// Manual saves never retry; on success the version's patch component
// increments and any scheduled autosave attempt is cancelled.
func (s *Session) Save(ctx context.Context) {
	s.mu.Lock()
	if s.closed || !s.dirty || s.saving || s.loading {
		s.mu.Unlock()
		return
	}
	s.saving = true
	content, version := s.content, s.version
	s.mu.Unlock()

	err := s.save(ctx, content, version)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		s.reportf("save %s: %v", s.docID, err)
		return
	}
	s.baseline = content
	s.dirty = s.content != content
	s.lastSaved = time.Now()
	s.version = nextVersion(version)
	s.mu.Unlock()

	s.autosave.Cancel()
}

// autosaveAttempt is one scheduler-driven persistence attempt. It
// shares the in-flight flag with Save so a manual save and an autosave
// never both call the persistence function. Success updates the
// baseline and lastSaved but, unlike a manual save, never the version.
func (s *Session) autosaveAttempt(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || !s.dirty {
		s.mu.Unlock()
		return ErrNotDirty
	}
	if s.saving || s.loading {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.saving = true
	content, version := s.content, s.version
	s.mu.Unlock()

	err := s.save(ctx, content, version)

	s.mu.Lock()
	s.saving = false
	if err == nil {
		s.baseline = content
		s.dirty = s.content != content
		s.lastSaved = time.Now()
	}
	s.mu.Unlock()
	return err
}

// Undo reverts the most recent edit. No-op on an empty undo log.
func (s *Session) Undo() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	a, ok := s.history.Undo()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.content = a.OriginalContent
	s.dirty = s.content != s.baseline
	clean := !s.dirty
	s.mu.Unlock()

	if clean {
		s.autosave.Cancel()
	}
}

// Redo re-applies the most recently undone edit. No-op on an empty
// redo log.
func (s *Session) Redo() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	a, ok := s.history.Redo()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.content = a.Content
	s.dirty = s.content != s.baseline
	clean := !s.dirty
	s.mu.Unlock()

	if clean {
		s.autosave.Cancel()
	}
}

// UpdateCursor records the cursor position and selection. No effect on
// dirtiness or history.
func (s *Session) UpdateCursor(position int, selection *Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cursor = position
	s.selection = selection
}

// AddChange records a collaborative change proposal.
func (s *Session) AddChange(author string, r Range, proposed string) FileChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return FileChange{}
	}
	return s.changes.Add(author, r, proposed)
}

// AcceptChange marks a proposal accepted without touching the buffer.
// No-op for an unknown id.
func (s *Session) AcceptChange(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes.Accept(id)
}

// RejectChange removes a proposal. No-op for an unknown id.
func (s *Session) RejectChange(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes.Reject(id)
}

// Changes returns a copy of the pending proposals.
func (s *Session) Changes() []FileChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes.List()
}

// Close tears the session down: the autosave goroutine stops, pending
// timers are cancelled, and all further operations become no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.autosave.Stop()
}

func (s *Session) DocID() string { return s.docID }

func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Session) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) LastSaved() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Cursor returns the cursor position and selection (nil when collapsed).
func (s *Session) Cursor() (int, *Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor, s.selection
}

func (s *Session) reportf(format string, args ...any) {
	if s.errors != nil {
		s.errors(fmt.Sprintf(format, args...))
	}
}
