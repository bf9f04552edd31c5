package snapshot

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sagenex/teamtree/pkg/errors"
)

// Mongo defaults.
const (
	DefaultDatabase   = "teamtree"
	DefaultCollection = "snapshots"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	// Timeout bounds connecting and the initial ping. Defaults to 10s.
	Timeout time.Duration
}

// MongoStore keeps snapshots in a MongoDB collection, one document per
// snapshot with the snapshot id as _id. Every query filters on owner.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// owner/taken_at index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo URI is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "taken_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create snapshot index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validateID(snap.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": snap.ID}, snap, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save snapshot %s", snap.ID)
	}
	return nil
}

// ownerFilter matches owner's documents, or every document for "".
func ownerFilter(owner string) bson.M {
	if owner == "" {
		return bson.M{}
	}
	return bson.M{"owner": owner}
}

func (s *MongoStore) Get(ctx context.Context, owner, id string) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	filter := ownerFilter(owner)
	filter["_id"] = id
	var snap Snapshot
	err := s.coll.FindOne(ctx, filter).Decode(&snap)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get snapshot %s", id)
	}
	return &snap, nil
}

func (s *MongoStore) List(ctx context.Context, owner string, limit int) ([]*Snapshot, error) {
	find := options.Find().SetSort(bson.D{{Key: "taken_at", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		find.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, ownerFilter(owner), find)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list snapshots")
	}
	var out []*Snapshot
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode snapshots")
	}
	return out, nil
}

func (s *MongoStore) Latest(ctx context.Context, owner string) (*Snapshot, error) {
	snaps, err := s.List(ctx, owner, 1)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no snapshots stored")
	}
	return snaps[0], nil
}

func (s *MongoStore) Delete(ctx context.Context, owner, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	filter := ownerFilter(owner)
	filter["_id"] = id
	if _, err := s.coll.DeleteOne(ctx, filter); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete snapshot %s", id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
