package search

import (
	"context"

	"github.com/pasttense/pasttense/internal/domain"
	"github.com/pasttense/pasttense/internal/domain/search/filter"
	"github.com/pasttense/pasttense/internal/domain/search/result"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// Repository defines the storage contract for vector search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, k int) ([]result.Result, error)
}

// VisitReader loads stored visits by ID, in order, skipping unknown IDs.
type VisitReader interface {
	GetByIDs(ctx context.Context, ids []string) ([]domvisit.Visit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
