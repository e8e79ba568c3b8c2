package editor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// InitialVersion is the version a freshly opened document starts at.
const InitialVersion = "1.0.0"

// nextVersion increments the patch component of a dotted three-part
// version counter. Malformed input resets to InitialVersion rather than
// erroring; the session never raises across its public API.
func nextVersion(v string) string {
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return InitialVersion
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return InitialVersion
		}
		nums[i] = n
	}
	return fmt.Sprintf("%d.%d.%d", nums[0], nums[1], nums[2]+1)
}

// LoadVersion replaces the live buffer with a named historical
// snapshot. A second call while one is in flight is dropped, not
// queued. On success the buffer, baseline, and version are replaced,
// both history logs are cleared (undo cannot cross a version boundary),
// lastSaved takes the snapshot's stored timestamp, and any pending
// autosave is cancelled. On failure state is untouched and the error
// goes to the sink.
func (s *Session) LoadVersion(ctx context.Context, versionID string) {
	s.mu.Lock()
	if s.closed || s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	snap, err := s.load(ctx, versionID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		s.reportf("load version %s of %s: %v", versionID, s.docID, err)
		return
	}
	s.content = snap.Content
	s.baseline = snap.Content
	s.version = snap.Version
	s.dirty = false
	s.lastSaved = snap.CreatedAt
	s.history.Clear()
	s.mu.Unlock()

	s.autosave.Cancel()
}
