package editor

import (
	"time"

	"github.com/google/uuid"
)

// ChangeProposalTracker holds collaborative change proposals pending
// accept/reject. Plain data owned by a Session; not safe for concurrent
// use on its own.
type ChangeProposalTracker struct {
	changes []FileChange
}

// NewChangeProposalTracker creates an empty tracker.
func NewChangeProposalTracker() *ChangeProposalTracker {
	return &ChangeProposalTracker{}
}

// Add records a new proposal with a generated id and timestamp.
// Overlapping ranges are not validated.
func (t *ChangeProposalTracker) Add(author string, r Range, proposed string) FileChange {
	c := FileChange{
		ID:              uuid.NewString(),
		Author:          author,
		Timestamp:       time.Now(),
		Range:           r,
		ProposedContent: proposed,
	}
	t.changes = append(t.changes, c)
	return c
}

// Accept marks the proposal accepted. The proposed content is not
// merged into the live buffer; merging is the caller's concern.
// No-op for an unknown id.
func (t *ChangeProposalTracker) Accept(id string) bool {
	for i := range t.changes {
		if t.changes[i].ID == id {
			t.changes[i].Accepted = true
			return true
		}
	}
	return false
}

// Reject removes the proposal entirely. No-op for an unknown id.
func (t *ChangeProposalTracker) Reject(id string) bool {
	for i := range t.changes {
		if t.changes[i].ID == id {
			t.changes = append(t.changes[:i], t.changes[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the current proposals.
func (t *ChangeProposalTracker) List() []FileChange {
	out := make([]FileChange, len(t.changes))
	copy(out, t.changes)
	return out
}

// Len reports the number of pending proposals.
func (t *ChangeProposalTracker) Len() int { return len(t.changes) }
