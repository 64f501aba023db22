// Package ui is the terminal front end: a search tab and an add tab over the API client.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pasttense/pasttense/pkg/client"
)

// Tab names a front-end view.
type Tab string

// Available tabs. Search is active by default.
const (
	TabSearch Tab = "search"
	TabAdd    Tab = "add"
)

var tabLabels = []struct {
	tab   Tab
	label string
}{
	{TabSearch, "Search Pages"},
	{TabAdd, "Add Page Visit"},
}

// ParseTab returns the tab named s.
func ParseTab(s string) (Tab, error) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case TabSearch:
		return TabSearch, nil
	case TabAdd:
		return TabAdd, nil
	default:
		return "", fmt.Errorf("unknown tab %q (want search or add)", s)
	}
}

// API is the subset of the HTTP client the views call.
type API interface {
	StorePageVisit(ctx context.Context, v client.PageVisit) (client.StatusResponse, error)
	SemanticSearch(ctx context.Context, q client.SearchQuery) (client.SearchResponse, error)
	ShowResults(ctx context.Context, urls []string) (client.ShowResponse, error)
}

// View renders one tab.
type View interface {
	Run(ctx context.Context, args []string) error
}

// App holds the active tab and its views. Only the active view runs.
type App struct {
	active Tab
	views  map[Tab]View
	out    io.Writer
}

// NewApp creates an App with the search tab active.
func NewApp(api API, in io.Reader, out io.Writer) *App {
	return newApp(out, map[Tab]View{
		TabSearch: NewSearchView(api, out),
		TabAdd:    NewAddView(api, in, out),
	})
}

func newApp(out io.Writer, views map[Tab]View) *App {
	return &App{active: TabSearch, views: views, out: out}
}

// Select makes tab the active view.
func (a *App) Select(tab Tab) error {
	if _, ok := a.views[tab]; !ok {
		return fmt.Errorf("unknown tab %q", tab)
	}
	a.active = tab
	return nil
}

// Active returns the active tab.
func (a *App) Active() Tab { return a.active }

// Run renders the header and runs the active view with args.
func (a *App) Run(ctx context.Context, args []string) error {
	a.header()
	return a.views[a.active].Run(ctx, args)
}

func (a *App) header() {
	var b strings.Builder
	b.WriteString("PastTense: Semantic Search for Your Web History\n")
	for i, t := range tabLabels {
		if i > 0 {
			b.WriteString("  ")
		}
		if t.tab == a.active {
			fmt.Fprintf(&b, "[ %s ]", t.label)
		} else {
			fmt.Fprintf(&b, "  %s  ", t.label)
		}
	}
	b.WriteString("\n\n")
	_, _ = io.WriteString(a.out, b.String())
}
