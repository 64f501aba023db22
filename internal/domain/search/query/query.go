package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/pasttense/pasttense/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	MaxTopK        = 100
)

// Filter field names in the visit index.
const (
	FieldDomain        = "domain"
	FieldLastVisitedAt = "last_visited_at"
)

// Query is a validated semantic search request.
type Query struct {
	text     string
	topK     int
	minScore float64
	domain   string
	since    *time.Time
	until    *time.Time
}

// New validates and normalizes search parameters.
// topK <= 0 selects DefaultTopK; values above maxTopK are rejected.
func New(
	text string, topK int, minScore float64, domain string,
	since, until *time.Time, maxTopK int,
) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Query{}, fmt.Errorf("query is required")
	}
	if len(text) > MaxQueryLength {
		return Query{}, fmt.Errorf("query too long (max %d bytes)", MaxQueryLength)
	}
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if topK <= 0 {
		topK = min(DefaultTopK, maxTopK)
	}
	if topK > maxTopK {
		return Query{}, fmt.Errorf("top_k must be between 1 and %d", maxTopK)
	}
	if minScore < 0 || minScore > 1 {
		return Query{}, fmt.Errorf("min_score must be between 0 and 1")
	}
	if since != nil && until != nil && since.After(*until) {
		return Query{}, fmt.Errorf("since must not be after until")
	}

	return Query{
		text:     text,
		topK:     topK,
		minScore: minScore,
		domain:   strings.ToLower(strings.TrimSpace(domain)),
		since:    since,
		until:    until,
	}, nil
}

// Text returns the natural-language query.
func (q *Query) Text() string { return q.text }

// TopK returns the number of nearest neighbours to retrieve.
func (q *Query) TopK() int { return q.topK }

// MinScore returns the minimum similarity threshold.
func (q *Query) MinScore() float64 { return q.minScore }

// Domain returns the host filter, empty when unset.
func (q *Query) Domain() string { return q.domain }

// Filters builds the index pre-filter for the domain and visit-time bounds.
func (q *Query) Filters() (filter.Expression, error) {
	var conds []filter.Condition

	if q.domain != "" {
		c, err := filter.NewMatch(FieldDomain, q.domain)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("domain filter: %w", err)
		}
		conds = append(conds, c)
	}

	if q.since != nil || q.until != nil {
		r, err := filter.NewRangeFilter(millis(q.since), millis(q.until))
		if err != nil {
			return filter.Expression{}, fmt.Errorf("time filter: %w", err)
		}
		c, err := filter.NewRange(FieldLastVisitedAt, r)
		if err != nil {
			return filter.Expression{}, fmt.Errorf("time filter: %w", err)
		}
		conds = append(conds, c)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build filters: %w", err)
	}
	return expr, nil
}

func millis(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	v := float64(t.UnixMilli())
	return &v
}
