package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHandler creates the HTTP handler with all routes.
func NewHandler(hub *Hub) http.Handler {
	mux := http.NewServeMux()

	// Serve static files.
	fs := http.FileServer(http.Dir("static"))
	mux.Handle("/", fs)

	// Document listings for the portal's browse and history views.
	mux.HandleFunc("GET /api/documents", func(w http.ResponseWriter, r *http.Request) {
		docs, err := hub.Store().List(r.Context())
		if err != nil {
			log.Printf("list documents: %v", err)
			http.Error(w, "failed to list documents", http.StatusInternalServerError)
			return
		}
		writeJSON(w, docs)
	})

	mux.HandleFunc("GET /api/documents/{id}/versions", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		versions, err := hub.Store().ListVersions(r.Context(), id)
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		writeJSON(w, versions)
	})

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}
