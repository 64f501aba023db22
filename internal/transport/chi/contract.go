package chi

import (
	"context"

	"github.com/pasttense/pasttense/internal/domain/search/query"
	"github.com/pasttense/pasttense/internal/domain/search/result"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
	healthuc "github.com/pasttense/pasttense/internal/usecase/health"
	visituc "github.com/pasttense/pasttense/internal/usecase/visit"
)

// VisitStorer stores page visits.
type VisitStorer interface {
	Store(ctx context.Context, in visituc.Input) (bool, error)
}

// Searcher runs semantic search and loads stored pages.
type Searcher interface {
	Search(ctx context.Context, q *query.Query) ([]result.Result, error)
	Show(ctx context.Context, urls []string) ([]domvisit.Visit, error)
}

// HealthReporter aggregates component health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}
