// Package mongodb implements storage interfaces using MongoDB
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirosfoundation/go-ebics/internal/storage"
)

// Store implements storage.Store using MongoDB
type Store struct {
	client    *mongo.Client
	namespace string

	// Collections
	counters *mongo.Collection
	requests *mongo.Collection
}

// Config holds MongoDB connection settings
type Config struct {
	URI      string
	Database string
	// Namespace separates the counters of different banks sharing a
	// database. It is usually the host id.
	Namespace string
	Timeout   time.Duration
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	s := newStore(client, client.Database(cfg.Database), cfg.Namespace)

	if err := s.createIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	return s, nil
}

func newStore(client *mongo.Client, db *mongo.Database, namespace string) *Store {
	return &Store{
		client:    client,
		namespace: namespace,
		counters:  db.Collection("order_counters"),
		requests:  db.Collection("requests"),
	}
}

func (s *Store) createIndexes(ctx context.Context) error {
	_, err := s.requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "host_id", Value: 1}, {Key: "order_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating request indexes: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// CounterStore implementation

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

func (s *Store) counterID(partnerID string) string {
	if s.namespace == "" {
		return partnerID
	}
	return s.namespace + "/" + partnerID
}

// NextOrderID increments the partner's counter in a single atomic update.
// The counter document is created on first use.
func (s *Store) NextOrderID(ctx context.Context, partnerID string) (uint64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.counterID(partnerID)},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("incrementing order counter: %w", err)
	}
	if c.Seq <= 0 {
		return 0, fmt.Errorf("order counter for %s is %d", partnerID, c.Seq)
	}
	return uint64(c.Seq), nil
}

// JournalStore implementation

func (s *Store) RecordRequest(ctx context.Context, req *storage.Request) error {
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = time.Now().UTC()
	}
	_, err := s.requests.ReplaceOne(ctx, bson.M{"_id": req.ID}, req, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetRequest(ctx context.Context, id string) (*storage.Request, error) {
	var req storage.Request
	err := s.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *Store) ListRequests(ctx context.Context, filter *storage.RequestFilter) ([]*storage.Request, error) {
	query := bson.M{}
	if filter != nil {
		if filter.PartnerID != "" {
			query["partner_id"] = filter.PartnerID
		}
		if filter.OrderType != "" {
			query["order_type"] = filter.OrderType
		}
		if filter.Status != "" {
			query["status"] = filter.Status
		}
		if filter.Since != nil {
			query["created_at"] = bson.M{"$gte": *filter.Since}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil && filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.requests.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []*storage.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}
