package server

import (
	"context"
	"log"
	"sync"

	"github.com/sgrady/go-doc-editor/editor"
	"github.com/sgrady/go-doc-editor/store"
)

type joinRequest struct {
	client *Client
	docID  string
}

// Hub manages document sessions and routes clients to the right
// session, creating documents in the store on first join.
type Hub struct {
	store    store.DocumentStore
	autosave editor.AutoSaveConfig
	sessions map[string]*Session
	mu       sync.RWMutex

	joinDoc chan joinRequest
}

func NewHub(st store.DocumentStore, autosave editor.AutoSaveConfig) *Hub {
	return &Hub{
		store:    st,
		autosave: autosave,
		sessions: make(map[string]*Session),
		joinDoc:  make(chan joinRequest, 64),
	}
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for req := range h.joinDoc {
		h.handleJoinDoc(req)
	}
}

func (h *Hub) handleJoinDoc(req joinRequest) {
	h.mu.Lock()
	s, ok := h.sessions[req.docID]
	if !ok {
		// Create document in store if it doesn't exist.
		ctx := context.Background()
		if _, err := h.store.Get(ctx, req.docID); err != nil {
			if err := h.store.Create(ctx, req.docID, ""); err != nil {
				log.Printf("hub: failed to create doc %q: %v", req.docID, err)
				h.mu.Unlock()
				req.client.sendError("failed to create document")
				return
			}
		}

		info, err := h.store.Get(ctx, req.docID)
		if err != nil {
			log.Printf("hub: failed to get doc %q: %v", req.docID, err)
			h.mu.Unlock()
			req.client.sendError("failed to load document")
			return
		}

		s = h.newDocSession(info)
		h.sessions[req.docID] = s
		go s.Run()
	}
	h.mu.Unlock()

	s.join <- req.client
}

// newDocSession builds a server session whose editor core persists
// through and loads versions from the hub's store.
func (h *Hub) newDocSession(info *store.DocumentInfo) *Session {
	docID := info.ID
	saveFn := func(ctx context.Context, content, version string) error {
		return h.store.SaveContent(ctx, docID, content, version)
	}
	loadFn := func(ctx context.Context, versionID string) (*editor.Snapshot, error) {
		return h.store.GetVersion(ctx, docID, versionID)
	}

	s := newSession(docID)
	s.onEmpty = func() { h.removeSession(docID) }
	s.editor = editor.NewSession(docID, info.Content, info.Version, saveFn, loadFn, s.reportError, h.autosave)
	return s
}

func (h *Hub) removeSession(docID string) {
	h.mu.Lock()
	delete(h.sessions, docID)
	h.mu.Unlock()
}

// GetSession returns the session for a document, if active.
func (h *Hub) GetSession(docID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[docID]
}

// Store exposes the hub's document store to the HTTP layer.
func (h *Hub) Store() store.DocumentStore {
	return h.store
}
