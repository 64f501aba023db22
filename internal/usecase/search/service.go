package search

import (
	"context"
	"fmt"

	"github.com/pasttense/pasttense/internal/domain"
	"github.com/pasttense/pasttense/internal/domain/search/query"
	"github.com/pasttense/pasttense/internal/domain/search/result"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// DefaultMaxShowURLs caps the URL list of a single Show call.
const DefaultMaxShowURLs = 100

// Service answers semantic searches and loads stored pages for display.
type Service struct {
	repo        Repository
	visits      VisitReader
	embed       Embedder
	maxShowURLs int
}

// New creates a search service. maxShowURLs <= 0 selects DefaultMaxShowURLs.
func New(repo Repository, visits VisitReader, embed Embedder, maxShowURLs int) *Service {
	if maxShowURLs <= 0 {
		maxShowURLs = DefaultMaxShowURLs
	}
	return &Service{repo: repo, visits: visits, embed: embed, maxShowURLs: maxShowURLs}
}

// Search embeds the query, runs a pre-filtered KNN and returns hits above
// min_score ordered by descending score.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]result.Result, error) {
	filters, err := q.Filters()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	embResult, err := s.embed.Embed(ctx, q.Text())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.EmbeddingUsageFrom(ctx).AddTokens(embResult.TotalTokens)

	results, err := s.repo.SearchKNN(ctx, embResult.Embedding, filters, q.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	results = result.FilterMinScore(results, q.MinScore())
	result.SortByScore(results)
	if len(results) > q.TopK() {
		results = results[:q.TopK()]
	}
	return results, nil
}

// Show returns the stored pages for urls in request order.
// URLs are normalized first; duplicates collapse and unknown or malformed URLs are skipped.
func (s *Service) Show(ctx context.Context, urls []string) ([]domvisit.Visit, error) {
	if len(urls) > s.maxShowURLs {
		return nil, fmt.Errorf("%w: at most %d urls per request, got %d",
			domain.ErrInvalidInput, s.maxShowURLs, len(urls))
	}

	ids := make([]string, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		normalized, err := domvisit.NormalizeURL(raw)
		if err != nil {
			continue
		}
		id := domvisit.ID(normalized)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	visits, err := s.visits.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	return visits, nil
}
