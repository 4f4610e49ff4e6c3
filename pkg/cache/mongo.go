package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures [NewMongoCache].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	KeyPrefix  string
}

// mongoEntry is the stored document. Entries without ExpiresAt never
// expire; the TTL index ignores documents missing the field.
type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// mongoStore is the document access MongoCache needs.
type mongoStore interface {
	find(ctx context.Context, key string) (*mongoEntry, error)
	upsert(ctx context.Context, e mongoEntry) error
	remove(ctx context.Context, key string) error
	removePrefix(ctx context.Context, prefix string) (int64, error)
	close(ctx context.Context) error
}

// MongoCache stores entries in a MongoDB collection.
type MongoCache struct {
	store  mongoStore
	prefix string
	now    func() time.Time
}

// NewMongoCache connects, pings and ensures the TTL index on expires_at.
func NewMongoCache(ctx context.Context, cfg MongoConfig) (*MongoCache, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "claimgraph"
	}
	if cfg.Collection == "" {
		cfg.Collection = "payloads"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create ttl index: %w", err)
	}

	return newMongoCache(&mongoCollection{client: client, coll: coll}, cfg.KeyPrefix), nil
}

func newMongoCache(store mongoStore, prefix string) *MongoCache {
	return &MongoCache{store: store, prefix: prefix, now: time.Now}
}

// Get implements [Cache]. The TTL monitor runs about once a minute, so
// expiry is also checked here.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, err := c.store.find(ctx, c.prefix+key)
	if err != nil {
		return nil, false, fmt.Errorf("mongo find: %w", err)
	}
	if e == nil {
		return nil, false, nil
	}
	if e.ExpiresAt != nil && c.now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements [Cache].
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: c.prefix + key, Data: data}
	if ttl > 0 {
		exp := c.now().Add(ttl)
		e.ExpiresAt = &exp
	}
	if err := c.store.upsert(ctx, e); err != nil {
		return fmt.Errorf("mongo upsert: %w", err)
	}
	return nil
}

// Delete implements [Cache].
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	if err := c.store.remove(ctx, c.prefix+key); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// Clear deletes every document under the prefix.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	n, err := c.store.removePrefix(ctx, c.prefix)
	return int(n), err
}

// Close disconnects the client.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.store.close(ctx)
}

// mongoCollection adapts a driver collection to mongoStore.
type mongoCollection struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (m *mongoCollection) find(ctx context.Context, key string) (*mongoEntry, error) {
	var e mongoEntry
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (m *mongoCollection) upsert(ctx context.Context, e mongoEntry) error {
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": e.Key}, e, options.Replace().SetUpsert(true))
	return err
}

func (m *mongoCollection) remove(ctx context.Context, key string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *mongoCollection) removePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *mongoCollection) close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var (
	_ Cache   = (*MongoCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
