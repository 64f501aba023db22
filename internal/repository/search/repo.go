package search

import (
	"context"
	"fmt"

	"github.com/pasttense/pasttense/internal/db"
	"github.com/pasttense/pasttense/internal/domain/search/filter"
	"github.com/pasttense/pasttense/internal/domain/search/result"
	visitrepo "github.com/pasttense/pasttense/internal/repository/visit"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

var returnFields = []string{
	visitrepo.FieldURL,
	visitrepo.FieldTitle,
	visitrepo.FieldDomain,
	visitrepo.FieldLastVisitedAt,
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN finds the k visits closest to vector among those matching filters.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, k int,
) ([]result.Result, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    visitrepo.IndexName,
		Filters:      filters,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", visitrepo.IndexName, err)
	}
	return parseKNNResults(sr), nil
}

func parseKNNResults(sr *db.SearchResult) []result.Result {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		f := entry.Fields
		results = append(results, result.New(
			f[visitrepo.FieldURL],
			f[visitrepo.FieldTitle],
			f[visitrepo.FieldDomain],
			entry.Score,
			visitrepo.ParseMillis(f[visitrepo.FieldLastVisitedAt]),
		))
	}
	return results
}
