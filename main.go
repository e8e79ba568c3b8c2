package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"cloud.google.com/go/firestore"

	"github.com/sgrady/go-doc-editor/config"
	"github.com/sgrady/go-doc-editor/server"
	"github.com/sgrady/go-doc-editor/store"
)

func main() {
	cfg := config.Load()
	addr := flag.String("addr", cfg.Addr, "HTTP listen address")
	flag.Parse()

	st, cleanup, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}
	defer cleanup()

	if cfg.CacheFlushInterval > 0 {
		cached := store.NewCachedStore(st, cfg.CacheFlushInterval)
		defer cached.Close()
		st = cached
	}

	hub := server.NewHub(st, cfg.AutoSave)
	go hub.Run()

	handler := server.NewHandler(hub)

	log.Printf("Starting server on %s (store: %s)", *addr, cfg.StoreBackend)
	if err := http.ListenAndServe(*addr, handler); err != nil {
		log.Fatal(err)
	}
}

func buildStore(cfg config.Config) (store.DocumentStore, func(), error) {
	switch cfg.StoreBackend {
	case "firestore":
		client, err := firestore.NewClient(context.Background(), cfg.FirestoreProject)
		if err != nil {
			return nil, nil, err
		}
		return store.NewFirestoreStore(client), func() { client.Close() }, nil
	case "redis":
		rs, err := store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { rs.Close() }, nil
	default:
		return store.NewMemoryStore(), func() {}, nil
	}
}
