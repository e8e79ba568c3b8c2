package store

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/sgrady/go-doc-editor/editor"
)

// dirtyState tracks what needs flushing for a single document.
type dirtyState struct {
	created bool     // doc created locally but not yet in backing store
	pending []string // version snapshots not yet flushed, in save order
}

func (ds *dirtyState) markPending(version string) {
	for _, v := range ds.pending {
		if v == version {
			return
		}
	}
	ds.pending = append(ds.pending, version)
}

// CachedStore wraps a backing DocumentStore with an in-memory cache.
// Reads and writes are served from the cache; dirty documents are
// flushed to the backing store periodically in the background and once
// more on Close.
type CachedStore struct {
	cache         *MemoryStore
	backing       DocumentStore
	mu            sync.Mutex
	dirty         map[string]*dirtyState
	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
}

// NewCachedStore creates a CachedStore that caches in memory and
// flushes dirty documents to the backing store every flushInterval.
func NewCachedStore(backing DocumentStore, flushInterval time.Duration) *CachedStore {
	cs := &CachedStore{
		cache:         NewMemoryStore(),
		backing:       backing,
		dirty:         make(map[string]*dirtyState),
		flushInterval: flushInterval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go cs.flushLoop()
	return cs
}

func (cs *CachedStore) Create(ctx context.Context, id, content string) error {
	if err := cs.cache.Create(ctx, id, content); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.dirty[id] = &dirtyState{created: true}
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	info, err := cs.cache.Get(ctx, id)
	if err == nil {
		return info, nil
	}
	// Cache miss — load from backing store.
	if err := cs.loadFromBacking(ctx, id); err != nil {
		return nil, err
	}
	return cs.cache.Get(ctx, id)
}

func (cs *CachedStore) List(ctx context.Context) ([]DocumentInfo, error) {
	return cs.backing.List(ctx)
}

func (cs *CachedStore) SaveContent(ctx context.Context, id, content, version string) error {
	// Ensure doc is in cache.
	if _, err := cs.Get(ctx, id); err != nil {
		return err
	}
	if err := cs.cache.SaveContent(ctx, id, content, version); err != nil {
		return err
	}
	cs.mu.Lock()
	ds := cs.dirty[id]
	if ds == nil {
		ds = &dirtyState{}
		cs.dirty[id] = ds
	}
	ds.markPending(version)
	cs.mu.Unlock()
	return nil
}

func (cs *CachedStore) GetVersion(ctx context.Context, id, versionID string) (*editor.Snapshot, error) {
	snap, err := cs.cache.GetVersion(ctx, id, versionID)
	if err == nil {
		return snap, nil
	}
	// Snapshot not cached — read through to the backing store.
	snap, err = cs.backing.GetVersion(ctx, id, versionID)
	if err != nil {
		return nil, err
	}
	if _, cacheErr := cs.cache.Get(ctx, id); cacheErr == nil {
		cs.cache.putVersion(id, *snap)
	}
	return snap, nil
}

func (cs *CachedStore) ListVersions(ctx context.Context, id string) ([]VersionInfo, error) {
	// The backing store is authoritative for older versions; merge in
	// snapshots saved locally but not yet flushed.
	flushed, err := cs.backing.ListVersions(ctx, id)
	if err != nil {
		cs.mu.Lock()
		ds := cs.dirty[id]
		created := ds != nil && ds.created
		cs.mu.Unlock()
		if !created {
			return nil, err
		}
		flushed = nil
	}

	seen := make(map[string]bool, len(flushed))
	for _, v := range flushed {
		seen[v.Version] = true
	}

	cs.mu.Lock()
	var pending []string
	if ds := cs.dirty[id]; ds != nil {
		pending = append(pending, ds.pending...)
	}
	cs.mu.Unlock()

	for _, v := range pending {
		if seen[v] {
			continue
		}
		if snap, err := cs.cache.GetVersion(ctx, id, v); err == nil {
			flushed = append(flushed, VersionInfo{Version: snap.Version, CreatedAt: snap.CreatedAt})
		}
	}
	return flushed, nil
}

// loadFromBacking loads a document's metadata and content from the
// backing store into the cache. Version snapshots are read through
// lazily by GetVersion.
func (cs *CachedStore) loadFromBacking(ctx context.Context, id string) error {
	info, err := cs.backing.Get(ctx, id)
	if err != nil {
		return err
	}

	// Write directly into the cache's internal map so the backing
	// store's version string survives as-is.
	cs.cache.mu.Lock()
	if _, exists := cs.cache.docs[id]; !exists {
		cs.cache.docs[id] = &docRecord{
			info:     *info,
			versions: make(map[string]editor.Snapshot),
		}
	}
	cs.cache.mu.Unlock()
	return nil
}

func (cs *CachedStore) flushLoop() {
	ticker := time.NewTicker(cs.flushInterval)
	defer ticker.Stop()
	defer close(cs.done)

	for {
		select {
		case <-ticker.C:
			cs.flush()
		case <-cs.stop:
			cs.flush()
			return
		}
	}
}

// flush writes all dirty documents to the backing store. Snapshots are
// flushed in save order, so the backing store's live content ends at
// the most recent save.
func (cs *CachedStore) flush() {
	cs.mu.Lock()
	snapshot := make(map[string]*dirtyState, len(cs.dirty))
	for id, ds := range cs.dirty {
		cp := &dirtyState{created: ds.created}
		cp.pending = append(cp.pending, ds.pending...)
		snapshot[id] = cp
	}
	cs.mu.Unlock()

	ctx := context.Background()

	for id, ds := range snapshot {
		if ds.created {
			info, err := cs.cache.Get(ctx, id)
			if err != nil {
				continue
			}
			if err := cs.backing.Create(ctx, id, info.Content); err != nil {
				log.Printf("cached store: failed to create doc %q in backing store: %v", id, err)
				continue
			}
		}

		var flushedVersions []string
		ok := true
		for _, v := range ds.pending {
			snap, err := cs.cache.GetVersion(ctx, id, v)
			if err != nil {
				// Evicted from cache; nothing left to flush for it.
				flushedVersions = append(flushedVersions, v)
				continue
			}
			if err := cs.backing.SaveContent(ctx, id, snap.Content, v); err != nil {
				log.Printf("cached store: failed to flush version %q of doc %q: %v", v, id, err)
				// Stop flushing this doc — will retry next cycle.
				ok = false
				break
			}
			flushedVersions = append(flushedVersions, v)
		}

		// Update the authoritative dirty state.
		cs.mu.Lock()
		cur := cs.dirty[id]
		if cur != nil {
			cur.created = false
			remaining := cur.pending[:0]
			for _, v := range cur.pending {
				if !contains(flushedVersions, v) {
					remaining = append(remaining, v)
				}
			}
			cur.pending = remaining
			if ok && len(cur.pending) == 0 {
				delete(cs.dirty, id)
			}
		}
		cs.mu.Unlock()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Close signals the flush loop to perform a final flush and waits for
// it to complete.
func (cs *CachedStore) Close() {
	close(cs.stop)
	<-cs.done
}
