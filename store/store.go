package store

import (
	"context"
	"time"

	"github.com/sgrady/go-doc-editor/editor"
)

// DocumentInfo holds document metadata and live content.
type DocumentInfo struct {
	ID        string
	Content   string
	Version   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VersionInfo describes one saved snapshot of a document.
type VersionInfo struct {
	Version   string
	CreatedAt time.Time
}

// DocumentStore abstracts document persistence and version snapshots.
// SaveContent backs the editing session's save path; GetVersion backs
// its version loader.
// Implementations: MemoryStore, FirestoreStore, RedisStore, and the
// write-behind CachedStore wrapper.
type DocumentStore interface {
	Create(ctx context.Context, id, content string) error
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	List(ctx context.Context) ([]DocumentInfo, error)

	// SaveContent updates the live content and records a snapshot keyed
	// by the version string. Saving the same version twice overwrites
	// its snapshot.
	SaveContent(ctx context.Context, id, content, version string) error
	GetVersion(ctx context.Context, id, versionID string) (*editor.Snapshot, error)
	ListVersions(ctx context.Context, id string) ([]VersionInfo, error)
}
