package chi

import (
	"time"

	"github.com/pasttense/pasttense/internal/domain/search/result"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// ErrorCode is the machine-readable code of an error response.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeRequestCanceled        ErrorCode = "request_canceled"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// statusClientClosedRequest is the nginx convention for a caller that went away.
const statusClientClosedRequest = 499

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// PageVisitRequest is the body of POST /page_visit.
type PageVisitRequest struct {
	URL       string     `json:"url"`
	Title     string     `json:"title,omitempty"`
	Content   string     `json:"content,omitempty"`
	HTML      string     `json:"html,omitempty"`
	VisitedAt *time.Time `json:"visited_at,omitempty"`
}

// StatusResponse acknowledges a stored visit.
type StatusResponse struct {
	Status string `json:"status"`
}

// SearchRequest is the body of POST /semantic_search.
type SearchRequest struct {
	Query    string     `json:"query"`
	TopK     *int       `json:"top_k,omitempty"`
	MinScore *float64   `json:"min_score,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
}

// SearchResultItem is one semantic search hit.
type SearchResultItem struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain"`
	Score     float64   `json:"score"`
	VisitedAt time.Time `json:"visited_at"`
}

// SearchResponse is the body of a successful POST /semantic_search.
type SearchResponse struct {
	Results []SearchResultItem `json:"results"`
}

// PageResultItem is a stored page returned by POST /show_results.
type PageResultItem struct {
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Domain         string    `json:"domain"`
	Content        string    `json:"content"`
	FirstVisitedAt time.Time `json:"first_visited_at"`
	LastVisitedAt  time.Time `json:"last_visited_at"`
	VisitCount     int       `json:"visit_count"`
}

// ShowResponse is the body of a successful POST /show_results.
type ShowResponse struct {
	Results []PageResultItem `json:"results"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResultToDTO(r *result.Result) SearchResultItem {
	return SearchResultItem{
		URL:       r.URL(),
		Title:     r.Title(),
		Domain:    r.Domain(),
		Score:     r.Score(),
		VisitedAt: r.VisitedAt(),
	}
}

func visitToDTO(v *domvisit.Visit) PageResultItem {
	return PageResultItem{
		URL:            v.URL(),
		Title:          v.Title(),
		Domain:         v.Domain(),
		Content:        v.Content(),
		FirstVisitedAt: v.FirstVisitedAt(),
		LastVisitedAt:  v.LastVisitedAt(),
		VisitCount:     v.VisitCount(),
	}
}
