package visit

import (
	"github.com/pasttense/pasttense/internal/db"
	"github.com/pasttense/pasttense/internal/domain"
)

// Hash layout of a stored visit.
const (
	FieldURL            = "url"
	FieldTitle          = "title"
	FieldDomain         = "domain"
	FieldContent        = "content"
	FieldFirstVisitedAt = "first_visited_at"
	FieldLastVisitedAt  = "last_visited_at"
	FieldVisitCount     = "visit_count"
	FieldVector         = "__vector"
)

var (
	// KeyPrefix is the prefix of every visit hash.
	KeyPrefix = domain.KeyPrefix + "visit:"
	// IndexName is the FT index over visit hashes.
	IndexName = domain.KeyPrefix + "visit:idx"
)

// HNSWConfig holds HNSW index tuning parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Key returns the hash key of a visit ID.
func Key(id string) string { return KeyPrefix + id }

// buildIndex describes the visit index: domain TAG, last visit NUMERIC, HNSW COSINE vector.
func buildIndex(dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(IndexName).
		Prefix(KeyPrefix).
		Tag(FieldDomain).
		Numeric(FieldLastVisitedAt).
		VectorHNSW(FieldVector, "vector", dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
