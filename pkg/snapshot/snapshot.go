// Package snapshot keeps a history of fetched placement trees.
//
// A [Snapshot] freezes one tree response together with its statistics and a
// content hash, so team growth can be audited and two points in time compared
// with [Diff]. Every snapshot belongs to the member whose tree it holds (the
// tree's root id, see [Snapshot.Owner]) and stores only hand it back to that
// owner. Snapshots are stored through the [Store] interface, with
// implementations for different backends:
//   - file: one JSON file per snapshot, for the CLI
//   - mongo: a MongoDB collection, for the HTTP service
//
// # Usage
//
//	store, err := snapshot.NewFileStore("") // Uses ~/.config/teamtree/snapshots/
//	if err != nil {
//	    return err
//	}
//	snap, err := snapshot.New(resp, client.BaseURL())
//	if err != nil {
//	    return err
//	}
//	if err := store.Save(ctx, snap); err != nil {
//	    return err
//	}
//
// Compare the two most recent snapshots:
//
//	snaps, err := store.List(ctx, snap.Owner, 2)
//	delta := snapshot.Diff(snaps[1], snaps[0])
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sagenex/teamtree/pkg/cache"
	"github.com/sagenex/teamtree/pkg/errors"
	"github.com/sagenex/teamtree/pkg/tree"
)

// Snapshot is a tree response frozen at a point in time.
type Snapshot struct {
	ID string `json:"id" bson:"_id"`
	// Owner is the id of the member whose tree this is.
	Owner   string    `json:"owner" bson:"owner"`
	TakenAt time.Time `json:"taken_at" bson:"taken_at"`
	// Hash is the SHA-256 of the serialized response. Two snapshots with the
	// same hash hold identical trees.
	Hash   string          `json:"hash" bson:"hash"`
	Source string          `json:"source,omitempty" bson:"source,omitempty"`
	Stats  tree.Stats      `json:"stats" bson:"stats"`
	Tree   *tree.Node      `json:"tree" bson:"tree"`
	Parent *tree.ParentRef `json:"parent,omitempty" bson:"parent,omitempty"`
}

// Response returns the snapshot's tree in the backend's response shape.
func (s *Snapshot) Response() tree.Response {
	return tree.Response{Tree: s.Tree, Parent: s.Parent}
}

// Store is the interface for snapshot storage backends.
//
// Reads are scoped to an owner: a snapshot owned by someone else is reported
// as missing. The empty owner matches every snapshot; it is meant for the
// single-user CLI, and services shared by several members must always pass
// the caller's member id.
type Store interface {
	// Save stores a snapshot under its owner. Saving an existing id
	// replaces it.
	Save(ctx context.Context, s *Snapshot) error

	// Get retrieves one of owner's snapshots by id.
	// Returns a SNAPSHOT_NOT_FOUND error if it doesn't exist.
	Get(ctx context.Context, owner, id string) (*Snapshot, error)

	// List returns up to limit of owner's snapshots, newest first. A
	// limit <= 0 returns all of them.
	List(ctx context.Context, owner string, limit int) ([]*Snapshot, error)

	// Latest returns owner's newest snapshot.
	// Returns a SNAPSHOT_NOT_FOUND error if there is none.
	Latest(ctx context.Context, owner string) (*Snapshot, error)

	// Delete removes one of owner's snapshots. Deleting a missing id is
	// not an error.
	Delete(ctx context.Context, owner, id string) error

	// Close releases resources held by the store.
	Close() error
}

// now is replaced in tests.
var now = time.Now

// New snapshots resp, owned by the tree's root member. source records where
// the tree came from, usually the backend base URL.
func New(resp tree.Response, source string) (*Snapshot, error) {
	if resp.Tree == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "cannot snapshot a response without a tree")
	}
	data, err := tree.Marshal(resp)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize tree")
	}
	return &Snapshot{
		ID:      uuid.NewString(),
		Owner:   resp.Tree.ID,
		TakenAt: now().UTC(),
		Hash:    cache.Hash(data),
		Source:  source,
		Stats:   tree.ComputeStats(resp.Tree),
		Tree:    resp.Tree,
		Parent:  resp.Parent,
	}, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %q not found", id)
}

// owns reports whether owner may read s.
func owns(owner string, s *Snapshot) bool {
	return owner == "" || s.Owner == owner
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid snapshot id %q", id)
	}
	return nil
}
