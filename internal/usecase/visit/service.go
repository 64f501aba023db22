package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pasttense/pasttense/internal/domain"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// Input is a single browsing event as submitted by a client.
// Content wins over HTML; HTML is only parsed when Content is blank.
type Input struct {
	URL       string
	Title     string
	Content   string
	HTML      string
	VisitedAt time.Time // zero means now
}

// Service stores page visits with automatic text extraction and vectorization.
type Service struct {
	repo        Repository
	extractor   Extractor
	docEmbedder Embedder
	vectorDim   int
	storedTotal *prometheus.CounterVec
	now         func() time.Time
}

// New creates a visit service. vectorDim <= 0 disables the dimension check.
// storedTotal has the label "outcome" (created/updated) and may be nil.
func New(
	repo Repository, extractor Extractor, docEmbedder Embedder,
	vectorDim int, storedTotal *prometheus.CounterVec,
) *Service {
	return &Service{
		repo:        repo,
		extractor:   extractor,
		docEmbedder: docEmbedder,
		vectorDim:   vectorDim,
		storedTotal: storedTotal,
		now:         time.Now,
	}
}

// Store validates, embeds and stores a visit.
// Returns true if the page was seen for the first time.
func (s *Service) Store(ctx context.Context, in Input) (bool, error) {
	normalized, err := domvisit.NormalizeURL(in.URL)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	title, content := in.Title, in.Content
	if strings.TrimSpace(content) == "" && strings.TrimSpace(in.HTML) != "" {
		page, err := s.extractor.Extract(in.HTML, normalized)
		if err != nil {
			return false, fmt.Errorf("%w: extract html: %w", domain.ErrInvalidInput, err)
		}
		content = page.Text
		if strings.TrimSpace(title) == "" {
			title = page.Title
		}
	}

	visitedAt := in.VisitedAt
	if visitedAt.IsZero() {
		visitedAt = s.now()
	}

	v, err := domvisit.New(normalized, title, content, visitedAt)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	result, err := s.docEmbedder.Embed(ctx, v.EmbeddingText())
	if err != nil {
		return false, fmt.Errorf("vectorize page: %w", err)
	}
	domain.EmbeddingUsageFrom(ctx).AddTokens(result.TotalTokens)

	if s.vectorDim > 0 && len(result.Embedding) != s.vectorDim {
		return false, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(result.Embedding), s.vectorDim, domain.ErrEmbeddingProviderError,
		)
	}

	v.SetVector(result.Embedding)
	created, err := s.repo.Upsert(ctx, &v)
	if err != nil {
		return false, fmt.Errorf("upsert visit: %w", err)
	}

	s.count(created)
	return created, nil
}

func (s *Service) count(created bool) {
	if s.storedTotal == nil {
		return
	}
	outcome := "updated"
	if created {
		outcome = "created"
	}
	s.storedTotal.WithLabelValues(outcome).Inc()
}
