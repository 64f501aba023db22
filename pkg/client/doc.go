// Package client is a Go client for the pasttense HTTP API.
//
// It stores browsing events and runs semantic search over them:
//
//	c, _ := client.New("http://localhost:8000", client.WithRetry(2))
//	_, _ = c.StorePageVisit(ctx, client.PageVisit{
//	    URL:     "https://go.dev/blog/pipelines",
//	    Title:   "Go Concurrency Patterns: Pipelines",
//	    Content: text,
//	})
//	found, _ := c.SemanticSearch(ctx, client.SearchQuery{Query: "fan-in channels", TopK: 5})
//	urls := make([]string, len(found.Results))
//	for i, r := range found.Results {
//	    urls[i] = r.URL
//	}
//	pages, _ := c.ShowResults(ctx, urls)
//
// Every call is exactly one logical POST; retries (off by default) only
// repeat it on transport errors and 5xx responses.
package client
