package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCachedStore_ReadThrough(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	// Pre-populate backing store.
	if err := backing.Create(ctx, "doc1", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := backing.SaveContent(ctx, "doc1", "hello world", "1.0.1"); err != nil {
		t.Fatal(err)
	}

	cs := NewCachedStore(backing, time.Hour) // long interval — no auto flush
	defer cs.Close()

	// Get should load from backing.
	info, err := cs.Get(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if info.Content != "hello world" || info.Version != "1.0.1" {
		t.Errorf("unexpected info: %+v", info)
	}

	// Snapshots read through to the backing store.
	snap, err := cs.GetVersion(ctx, "doc1", "1.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Content != "hello world" {
		t.Errorf("snapshot content = %q, want %q", snap.Content, "hello world")
	}
}

func TestCachedStore_WriteBehindCreate(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()

	cs := NewCachedStore(backing, 20*time.Millisecond)
	defer cs.Close()

	if err := cs.Create(ctx, "doc1", "hello"); err != nil {
		t.Fatal(err)
	}

	// Backing should NOT have it yet.
	if _, err := backing.Get(ctx, "doc1"); err == nil {
		t.Error("expected backing to not have doc yet")
	}

	waitForStore(t, func() bool {
		info, err := backing.Get(ctx, "doc1")
		return err == nil && info.Content == "hello"
	})
}

func TestCachedStore_WriteBehindSave(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Create(ctx, "doc1", "hello")

	cs := NewCachedStore(backing, 20*time.Millisecond)
	defer cs.Close()

	if err := cs.SaveContent(ctx, "doc1", "hello world", "1.0.1"); err != nil {
		t.Fatal(err)
	}

	waitForStore(t, func() bool {
		info, err := backing.Get(ctx, "doc1")
		return err == nil && info.Content == "hello world" && info.Version == "1.0.1"
	})

	snap, err := backing.GetVersion(ctx, "doc1", "1.0.1")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Content != "hello world" {
		t.Errorf("flushed snapshot content = %q, want %q", snap.Content, "hello world")
	}
}

func TestCachedStore_FlushOrderEndsAtNewest(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Create(ctx, "doc1", "v0")

	cs := NewCachedStore(backing, time.Hour)

	cs.SaveContent(ctx, "doc1", "v1", "1.0.1")
	cs.SaveContent(ctx, "doc1", "v2", "1.0.2")
	cs.SaveContent(ctx, "doc1", "v3", "1.0.3")
	cs.Close() // final flush

	info, err := backing.Get(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if info.Content != "v3" || info.Version != "1.0.3" {
		t.Errorf("backing live content = (%q, %q), want (v3, 1.0.3)", info.Content, info.Version)
	}
	versions, _ := backing.ListVersions(ctx, "doc1")
	if len(versions) != 3 {
		t.Errorf("got %d flushed versions, want 3", len(versions))
	}
}

func TestCachedStore_ListVersionsMergesPending(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Create(ctx, "doc1", "hello")
	backing.SaveContent(ctx, "doc1", "hello world", "1.0.1")

	cs := NewCachedStore(backing, time.Hour)
	defer cs.Close()

	// Warm the cache, then save a version that is not yet flushed.
	if _, err := cs.Get(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	cs.SaveContent(ctx, "doc1", "hello again", "1.0.2")

	versions, err := cs.ListVersions(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2 (flushed + pending)", len(versions))
	}
}

// failingStore wraps a DocumentStore and fails SaveContent until told
// otherwise.
type failingStore struct {
	DocumentStore
	mu   sync.Mutex
	fail bool
}

func (f *failingStore) SaveContent(ctx context.Context, id, content, version string) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("backing unavailable")
	}
	return f.DocumentStore.SaveContent(ctx, id, content, version)
}

func (f *failingStore) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

func TestCachedStore_RetriesFlushNextCycle(t *testing.T) {
	mem := NewMemoryStore()
	ctx := context.Background()
	mem.Create(ctx, "doc1", "hello")

	backing := &failingStore{DocumentStore: mem, fail: true}
	cs := NewCachedStore(backing, 15*time.Millisecond)
	defer cs.Close()

	if err := cs.SaveContent(ctx, "doc1", "hello world", "1.0.1"); err != nil {
		t.Fatal(err)
	}

	// Let a failing flush cycle pass, then recover.
	time.Sleep(50 * time.Millisecond)
	if info, _ := mem.Get(ctx, "doc1"); info.Content != "hello" {
		t.Fatalf("flush should have failed, backing content = %q", info.Content)
	}

	backing.setFail(false)
	waitForStore(t, func() bool {
		info, err := mem.Get(ctx, "doc1")
		return err == nil && info.Content == "hello world"
	})
}

func TestCachedStore_ListDelegatesToBacking(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Create(ctx, "doc1", "")

	cs := NewCachedStore(backing, time.Hour)
	defer cs.Close()

	docs, err := cs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "doc1" {
		t.Errorf("unexpected listing: %+v", docs)
	}
}

func TestCachedStore_SnapshotSurvivesReadThrough(t *testing.T) {
	backing := NewMemoryStore()
	ctx := context.Background()
	backing.Create(ctx, "doc1", "hello")
	backing.SaveContent(ctx, "doc1", "hello world", "1.0.1")

	cs := NewCachedStore(backing, time.Hour)
	defer cs.Close()

	if _, err := cs.Get(ctx, "doc1"); err != nil {
		t.Fatal(err)
	}
	// First read populates the cache, second is served from it.
	for i := 0; i < 2; i++ {
		snap, err := cs.GetVersion(ctx, "doc1", "1.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if snap.Version != "1.0.1" {
			t.Errorf("snapshot version = %q, want %q", snap.Version, "1.0.1")
		}
	}
}

func waitForStore(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
