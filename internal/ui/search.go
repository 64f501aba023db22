package ui

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pasttense/pasttense/pkg/client"
)

const snippetRunes = 240

// SearchView runs a semantic search and prints the matching pages.
type SearchView struct {
	api API
	out io.Writer
}

// NewSearchView creates the search tab.
func NewSearchView(api API, out io.Writer) *SearchView {
	return &SearchView{api: api, out: out}
}

// Run parses [-top-k N] [-min-score S] [-domain D] <query...>.
func (v *SearchView) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(v.out)
	topK := fs.Int("top-k", 10, "number of results")
	minScore := fs.Float64("min-score", 0, "minimum similarity in [0,1]")
	domain := fs.String("domain", "", "only pages from this host")
	if err := fs.Parse(args); err != nil {
		return err
	}

	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("search: query is required")
	}

	found, err := v.api.SemanticSearch(ctx, client.SearchQuery{
		Query:    text,
		TopK:     *topK,
		MinScore: *minScore,
		Domain:   *domain,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if len(found.Results) == 0 {
		fmt.Fprintln(v.out, "No matching pages.")
		return nil
	}

	urls := make([]string, len(found.Results))
	for i, r := range found.Results {
		urls[i] = r.URL
	}
	pages, err := v.api.ShowResults(ctx, urls)
	if err != nil {
		return fmt.Errorf("show results: %w", err)
	}
	byURL := make(map[string]client.PageResult, len(pages.Results))
	for _, p := range pages.Results {
		byURL[p.URL] = p
	}

	fmt.Fprintf(v.out, "%d result(s) for %q\n\n", len(found.Results), text)
	for i, r := range found.Results {
		v.printResult(i+1, r, byURL[r.URL])
	}
	return nil
}

func (v *SearchView) printResult(n int, r client.SearchResult, page client.PageResult) {
	title := r.Title
	if title == "" {
		title = r.URL
	}
	fmt.Fprintf(v.out, "%d. %s  (%.1f%%)\n", n, title, r.Score*100)
	fmt.Fprintf(v.out, "   %s\n", r.URL)
	if page.URL == "" {
		fmt.Fprintf(v.out, "   last visited %s\n\n", r.VisitedAt.Local().Format(time.DateTime))
		return
	}
	fmt.Fprintf(v.out, "   visited %d time(s), first %s, last %s\n",
		page.VisitCount,
		page.FirstVisitedAt.Local().Format(time.DateTime),
		page.LastVisitedAt.Local().Format(time.DateTime),
	)
	if s := snippet(page.Content); s != "" {
		fmt.Fprintf(v.out, "   %s\n", s)
	}
	fmt.Fprintln(v.out)
}

func snippet(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= snippetRunes {
		return content
	}
	runes := []rune(content)
	return string(runes[:snippetRunes]) + "..."
}
