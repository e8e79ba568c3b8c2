package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sgrady/go-doc-editor/editor"
)

const (
	docKeyPrefix = "doc:"
	verKeyPrefix = "docver:"
	verIdxPrefix = "docvers:"
)

// redisDoc is the JSON shape stored for each document.
type redisDoc struct {
	Content   string    `json:"content"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// redisSnapshot is the JSON shape stored for each version snapshot.
type redisSnapshot struct {
	Content   string    `json:"content"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisStore is a Redis-backed implementation of DocumentStore.
// Live documents live under "doc:<id>"; snapshots under
// "docver:<id>:<version>" with an ordered index list per document.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store from a redis:// URL and
// verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(id string) string          { return docKeyPrefix + id }
func verKey(id, version string) string { return verKeyPrefix + id + ":" + version }
func verIdxKey(id string) string       { return verIdxPrefix + id }

func (s *RedisStore) Create(ctx context.Context, id, content string) error {
	now := time.Now()
	data, err := json.Marshal(redisDoc{
		Content:   content,
		Version:   editor.InitialVersion,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	ok, err := s.client.SetNX(ctx, docKey(id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create document %q: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("document %q already exists", id)
	}
	return nil
}

func (s *RedisStore) getDoc(ctx context.Context, id string) (*redisDoc, error) {
	data, err := s.client.Get(ctx, docKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get document %q: %w", id, err)
	}
	var doc redisDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document %q: %w", id, err)
	}
	return &doc, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	doc, err := s.getDoc(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DocumentInfo{
		ID:        id,
		Content:   doc.Content,
		Version:   doc.Version,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *RedisStore) List(ctx context.Context) ([]DocumentInfo, error) {
	var result []DocumentInfo
	iter := s.client.Scan(ctx, 0, docKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), docKeyPrefix)
		info, err := s.Get(ctx, id)
		if err != nil {
			// Deleted between scan and get.
			continue
		}
		result = append(result, *info)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return result, nil
}

func (s *RedisStore) SaveContent(ctx context.Context, id, content, version string) error {
	doc, err := s.getDoc(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.Content = content
	doc.Version = version
	doc.UpdatedAt = now

	docData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	snapData, err := json.Marshal(redisSnapshot{
		Content:   content,
		Version:   version,
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	// Overwriting an existing snapshot must not duplicate the index entry.
	existed, err := s.client.Exists(ctx, verKey(id, version)).Result()
	if err != nil {
		return fmt.Errorf("check snapshot %q: %w", version, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, docKey(id), docData, 0)
	pipe.Set(ctx, verKey(id, version), snapData, 0)
	if existed == 0 {
		pipe.RPush(ctx, verIdxKey(id), version)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save document %q: %w", id, err)
	}
	return nil
}

func (s *RedisStore) GetVersion(ctx context.Context, id, versionID string) (*editor.Snapshot, error) {
	data, err := s.client.Get(ctx, verKey(id, versionID)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("version %q of document %q not found", versionID, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get version %q of %q: %w", versionID, id, err)
	}
	var snap redisSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal version %q of %q: %w", versionID, id, err)
	}
	return &editor.Snapshot{
		Content:   snap.Content,
		Version:   snap.Version,
		CreatedAt: snap.CreatedAt,
	}, nil
}

func (s *RedisStore) ListVersions(ctx context.Context, id string) ([]VersionInfo, error) {
	if _, err := s.getDoc(ctx, id); err != nil {
		return nil, err
	}

	versions, err := s.client.LRange(ctx, verIdxKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list versions of %q: %w", id, err)
	}

	result := make([]VersionInfo, 0, len(versions))
	for _, v := range versions {
		snap, err := s.GetVersion(ctx, id, v)
		if err != nil {
			continue
		}
		result = append(result, VersionInfo{Version: snap.Version, CreatedAt: snap.CreatedAt})
	}
	return result, nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
