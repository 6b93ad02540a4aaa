// Package mongo stores diagrams in MongoDB, one document per diagram.
package mongo

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/ontolayout/pkg/diagram"
	"github.com/matzehuels/ontolayout/pkg/errors"
	"github.com/matzehuels/ontolayout/pkg/store"
)

// Default names used when Options leaves them empty.
const (
	DefaultDatabase   = "ontolayout"
	DefaultCollection = "diagrams"
)

// Options configures a Store.
type Options struct {
	URI        string
	Database   string
	Collection string
}

// document is the stored form of a diagram.
type document struct {
	ID        string           `bson:"_id"`
	Entities  []diagram.Entity `bson:"entities"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

// Store is a store.Store backed by a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if err := errors.ValidateURL(opts.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "ping mongodb")
	}
	return New(client, opts.Database, opts.Collection), nil
}

// New wraps an existing client.
func New(client *mongo.Client, database, collection string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context, id string) (*diagram.Memory, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load diagram %s", id)
	}
	return fromDocument(doc), nil
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, d *diagram.Memory) error {
	if err := errors.ValidateIdentifier(d.ID); err != nil {
		return err
	}
	doc := toDocument(d, s.now())
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save diagram %s", d.ID)
	}
	return nil
}

// Delete removes a diagram. Deleting a missing diagram is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete diagram %s", id)
	}
	return nil
}

// IDs returns the stored diagram ids in ascending order.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list diagrams")
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list diagrams")
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}

// Close implements store.Store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(d *diagram.Memory, now time.Time) document {
	return document{ID: d.ID, Entities: d.Entities(), UpdatedAt: now.UTC()}
}

func fromDocument(doc document) *diagram.Memory {
	return diagram.NewMemory(doc.ID, doc.Entities...)
}
