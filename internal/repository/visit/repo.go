package visit

import (
	"context"
	"errors"
	"fmt"

	"github.com/pasttense/pasttense/internal/db"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// store is the consumer interface for visits (ISP).
type store interface {
	HMerge(ctx context.Context, key string, m *db.HashMerge) (int64, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// ErrIndexMissing is returned by CheckIndex when the visit index is gone.
var ErrIndexMissing = errors.New("visit index missing")

// Repo implements usecase/visit.Repository.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates a visit repository for vectors of the given dimension.
func New(s store, dim int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dim: dim, hnsw: hnsw}
}

// EnsureIndex creates the visit index, tolerating an existing one.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.dim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// CheckIndex verifies that the visit index is still defined.
func (r *Repo) CheckIndex(ctx context.Context) error {
	ok, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("index info %s: %w", IndexName, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", IndexName, ErrIndexMissing)
	}
	return nil
}

// Upsert stores a visit, merging it into an earlier record of the same URL
// in one atomic step. Returns true if the record was created.
func (r *Repo) Upsert(ctx context.Context, v *domvisit.Visit) (bool, error) {
	key := Key(v.ID())

	count, err := r.store.HMerge(ctx, key, buildMerge(v))
	if err != nil {
		return false, fmt.Errorf("merge %s: %w", key, err)
	}
	return count == 1, nil
}

// GetByIDs loads visits in the order of ids, skipping the ones not stored.
func (r *Repo) GetByIDs(ctx context.Context, ids []string) ([]domvisit.Visit, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = Key(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}

	out := make([]domvisit.Visit, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		out = append(out, parseHashFields(keys[i], m))
	}
	return out, nil
}
