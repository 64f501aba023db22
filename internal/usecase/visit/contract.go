package visit

import (
	"context"

	"github.com/pasttense/pasttense/internal/domain"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
	"github.com/pasttense/pasttense/internal/extract"
)

// Repository defines the storage contract for page visits.
type Repository interface {
	Upsert(ctx context.Context, v *domvisit.Visit) (created bool, err error)
}

// Extractor turns raw page HTML into readable text.
type Extractor interface {
	Extract(html, pageURL string) (extract.Page, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
