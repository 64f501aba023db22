package client

import "time"

// PageVisit is a browsing event sent to POST /page_visit.
// Either Content or HTML must carry the page text.
type PageVisit struct {
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

// SearchQuery is the body of POST /semantic_search. Zero values use server defaults.
type SearchQuery struct {
	Query    string     `json:"query"`
	TopK     int        `json:"top_k,omitempty"`
	MinScore float64    `json:"min_score,omitempty"`
	Domain   string     `json:"domain,omitempty"`
	Since    *time.Time `json:"since,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
}

// SearchResult is one semantic search hit.
type SearchResult struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Domain    string    `json:"domain"`
	Score     float64   `json:"score"`
	VisitedAt time.Time `json:"visited_at"`
}

// SearchResponse holds hits ordered by descending score.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// PageResult is a stored page.
type PageResult struct {
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	Domain         string    `json:"domain"`
	Content        string    `json:"content"`
	FirstVisitedAt time.Time `json:"first_visited_at"`
	LastVisitedAt  time.Time `json:"last_visited_at"`
	VisitCount     int       `json:"visit_count"`
}

// ShowResponse holds stored pages in request order.
type ShowResponse struct {
	Results []PageResult `json:"results"`
}
