package config

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var ErrNotConnected = errors.New("mongo not connected")

// Mongo is the process-wide database handle. The client is created on the
// first successful call to Database and reused by every request afterwards;
// a failed attempt is not remembered and the next call dials again. Pooling
// is left to the driver.
type Mongo struct {
	cfg MongoConfig

	mu       sync.Mutex
	client   *mongo.Client
	attempts int
}

func NewMongo(cfg MongoConfig) *Mongo {
	return &Mongo{cfg: cfg}
}

func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client == nil {
		client, err := m.connect(ctx)
		if err != nil {
			return nil, err
		}
		m.client = client
	}
	return m.client.Database(m.cfg.Database), nil
}

func (m *Mongo) connect(ctx context.Context) (*mongo.Client, error) {
	m.attempts++

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Ping checks the connection without establishing one.
func (m *Mongo) Ping(ctx context.Context) error {
	client := m.current()
	if client == nil {
		return ErrNotConnected
	}
	return client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	m.mu.Lock()
	client := m.client
	m.client = nil
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

func (m *Mongo) current() *mongo.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}
