package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sgrady/go-doc-editor/editor"
)

type docRecord struct {
	info     DocumentInfo
	versions map[string]editor.Snapshot
}

// MemoryStore is an in-memory implementation of DocumentStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*docRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*docRecord)}
}

func (s *MemoryStore) Create(_ context.Context, id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; exists {
		return fmt.Errorf("document %q already exists", id)
	}
	now := time.Now()
	s.docs[id] = &docRecord{
		info: DocumentInfo{
			ID:        id,
			Content:   content,
			Version:   editor.InitialVersion,
			CreatedAt: now,
			UpdatedAt: now,
		},
		versions: make(map[string]editor.Snapshot),
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q not found", id)
	}
	info := rec.info
	return &info, nil
}

func (s *MemoryStore) List(_ context.Context) ([]DocumentInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]DocumentInfo, 0, len(s.docs))
	for _, rec := range s.docs {
		result = append(result, rec.info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryStore) SaveContent(_ context.Context, id, content, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.docs[id]
	if !ok {
		return fmt.Errorf("document %q not found", id)
	}
	now := time.Now()
	rec.info.Content = content
	rec.info.Version = version
	rec.info.UpdatedAt = now
	rec.versions[version] = editor.Snapshot{
		Content:   content,
		Version:   version,
		CreatedAt: now,
	}
	return nil
}

func (s *MemoryStore) GetVersion(_ context.Context, id, versionID string) (*editor.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q not found", id)
	}
	snap, ok := rec.versions[versionID]
	if !ok {
		return nil, fmt.Errorf("version %q of document %q not found", versionID, id)
	}
	return &snap, nil
}

func (s *MemoryStore) ListVersions(_ context.Context, id string) ([]VersionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("document %q not found", id)
	}
	result := make([]VersionInfo, 0, len(rec.versions))
	for _, snap := range rec.versions {
		result = append(result, VersionInfo{Version: snap.Version, CreatedAt: snap.CreatedAt})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Version < result[j].Version
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// putVersion inserts a snapshot directly, bypassing the live content.
// Used by CachedStore when backfilling versions from the backing store.
func (s *MemoryStore) putVersion(id string, snap editor.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.docs[id]; ok {
		rec.versions[snap.Version] = snap
	}
}
