package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoDatabase   = "pondera"
	DefaultMongoCollection = "cache"
)

// MongoCache stores entries in a MongoDB collection. Expiry is enforced on
// read and by a TTL index on expires_at.
type MongoCache struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures NewMongoCache.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoCache connects, pings and ensures the TTL index.
func NewMongoCache(ctx context.Context, opts MongoOptions) (*MongoCache, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("%w: mongo: %v", ErrUnavailable, err)
	}
	err = RetryWithBackoff(ctx, func() error {
		return Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: mongo: %v", ErrUnavailable, err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ttl index: %w", err)
	}
	return &MongoCache{client: client, coll: coll}, nil
}

// Get implements Cache.
func (c *MongoCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e mongoEntry
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// the TTL monitor runs about once a minute
	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set implements Cache.
func (c *MongoCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := mongoEntry{Key: key, Data: data}
	if ttl > 0 {
		exp := time.Now().Add(ttl).UTC()
		e.ExpiresAt = &exp
	}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, e, options.Replace().SetUpsert(true))
	return err
}

// Delete implements Cache.
func (c *MongoCache) Delete(ctx context.Context, key string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Clear implements Clearer.
func (c *MongoCache) Clear(ctx context.Context) (int, error) {
	res, err := c.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return int(res.DeletedCount), nil
}

// Close implements Cache.
func (c *MongoCache) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.client.Disconnect(ctx)
}

var (
	_ Cache   = (*MongoCache)(nil)
	_ Clearer = (*MongoCache)(nil)
)
