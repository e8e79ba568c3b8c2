package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/sgrady/go-doc-editor/editor"
)

// FirestoreStore is a Firestore-backed implementation of DocumentStore.
// Documents live in one collection; each saved version is a document in
// a "versions" subcollection keyed by its version string.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) versionsCollection(docID string) *firestore.CollectionRef {
	return s.docRef(docID).Collection("versions")
}

func (s *FirestoreStore) Create(ctx context.Context, id, content string) error {
	now := time.Now()
	_, err := s.docRef(id).Create(ctx, map[string]interface{}{
		"content":   content,
		"version":   editor.InitialVersion,
		"createdAt": now,
		"updatedAt": now,
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("document %q already exists", id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	snap, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToDocInfo(id, snap)
}

func snapshotToDocInfo(id string, snap *firestore.DocumentSnapshot) (*DocumentInfo, error) {
	data := snap.Data()
	content, _ := data["content"].(string)
	version, _ := data["version"].(string)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	return &DocumentInfo{
		ID:        id,
		Content:   content,
		Version:   version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var result []DocumentInfo
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		info, err := snapshotToDocInfo(snap.Ref.ID, snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *info)
	}
	return result, nil
}

func (s *FirestoreStore) SaveContent(ctx context.Context, id, content, version string) error {
	now := time.Now()
	_, err := s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: content},
		{Path: "version", Value: version},
		{Path: "updatedAt", Value: now},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return err
	}

	// Snapshot keyed by version string; re-saving a version overwrites it.
	_, err = s.versionsCollection(id).Doc(version).Set(ctx, map[string]interface{}{
		"content":   content,
		"version":   version,
		"createdAt": now,
	})
	return err
}

func (s *FirestoreStore) GetVersion(ctx context.Context, id, versionID string) (*editor.Snapshot, error) {
	snap, err := s.versionsCollection(id).Doc(versionID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("version %q of document %q not found", versionID, id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToVersion(snap)
}

func snapshotToVersion(snap *firestore.DocumentSnapshot) (*editor.Snapshot, error) {
	data := snap.Data()
	content, _ := data["content"].(string)
	version, ok := data["version"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid version field in snapshot %s", snap.Ref.ID)
	}
	createdAt, _ := data["createdAt"].(time.Time)
	return &editor.Snapshot{
		Content:   content,
		Version:   version,
		CreatedAt: createdAt,
	}, nil
}

func (s *FirestoreStore) ListVersions(ctx context.Context, id string) ([]VersionInfo, error) {
	// Verify document exists.
	_, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	iter := s.versionsCollection(id).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var result []VersionInfo
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := snapshotToVersion(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, VersionInfo{Version: v.Version, CreatedAt: v.CreatedAt})
	}
	return result, nil
}
