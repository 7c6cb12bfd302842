package cache

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type cacheDocument struct {
	Key       string    `bson:"_id"`
	Value     []byte    `bson:"value"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// MongoStore is the durable shared cache backend: one document per entry in
// a dedicated collection. Expiry is enforced at read time; expired documents
// are removed opportunistically when seen.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore creates a store over the feed_cache collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("feed_cache")}
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc cacheDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, false, nil
		}
		return nil, false, err
	}
	if time.Now().After(doc.ExpiresAt) {
		// Lazy purge; a failed delete just leaves the entry for the next read.
		_, _ = s.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": doc.ExpiresAt})
		return nil, false, nil
	}
	return doc.Value, true, nil
}

func (s *MongoStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := cacheDocument{
		Key:       key,
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (s *MongoStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	pattern := "^" + regexp.QuoteMeta(prefix)
	_, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$regex": pattern}})
	return err
}
