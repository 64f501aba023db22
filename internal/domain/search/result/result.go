package result

import (
	"sort"
	"time"
)

// Result is a single semantic search hit.
type Result struct {
	url       string
	title     string
	domain    string
	score     float64
	visitedAt time.Time
}

// New creates a search result.
func New(url, title, domain string, score float64, visitedAt time.Time) Result {
	return Result{url: url, title: title, domain: domain, score: score, visitedAt: visitedAt}
}

// URL returns the visited page URL.
func (r *Result) URL() string { return r.url }

// Title returns the page title.
func (r *Result) Title() string { return r.title }

// Domain returns the page host.
func (r *Result) Domain() string { return r.domain }

// Score returns the cosine similarity in [0,1].
func (r *Result) Score() float64 { return r.score }

// VisitedAt returns the most recent visit time.
func (r *Result) VisitedAt() time.Time { return r.visitedAt }

// SortByScore orders results by descending score, newest visit first on ties.
func SortByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].visitedAt.After(results[j].visitedAt)
	})
}

// FilterMinScore drops results scoring below minScore, reusing the slice.
func FilterMinScore(results []Result, minScore float64) []Result {
	if minScore <= 0 {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if r.score >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
