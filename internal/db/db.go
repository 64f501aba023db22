package db

import (
	"context"
	"time"
)

// Store is the database facade used by the composition root.
// Repositories depend on narrow consumer interfaces instead.
type Store interface {
	Pinger
	HashStore
	KVStore
	IndexManager
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HMerge(ctx context.Context, key string, m *HashMerge) (int64, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// HashMerge is a read-modify-write of one hash applied atomically on the server.
//
// The write is "newest" when Latest is not below the stored LatestField.
// Only a newest write moves LatestField forward and overwrites Fields.
// EarliestField keeps the smaller of its stored value and Earliest.
// A field with an empty value fills an absent field and never clears one.
// Counter is incremented by one and its new value returned.
type HashMerge struct {
	Fields        map[string]string
	LatestField   string
	Latest        int64
	EarliestField string
	Earliest      int64
	Counter       string
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides vector search over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
}
