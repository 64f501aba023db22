package ui

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pasttense/pasttense/pkg/client"
)

// AddView submits a page visit.
type AddView struct {
	api      API
	in       io.Reader
	out      io.Writer
	readFile func(string) ([]byte, error)
}

// NewAddView creates the add tab. in feeds -content -.
func NewAddView(api API, in io.Reader, out io.Writer) *AddView {
	return &AddView{api: api, in: in, out: out, readFile: os.ReadFile}
}

// Run parses -url, -title, -content, -html-file and -visited-at and stores the visit.
func (v *AddView) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(v.out)
	pageURL := fs.String("url", "", "page URL (required)")
	title := fs.String("title", "", "page title")
	content := fs.String("content", "", "readable page text, - reads stdin")
	htmlFile := fs.String("html-file", "", "file with raw page HTML")
	visitedAt := fs.String("visited-at", "", "visit time in RFC 3339, default now")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *pageURL == "" {
		return errors.New("add: -url is required")
	}

	visit := client.PageVisit{URL: *pageURL, Title: *title, Content: *content}
	if *content == "-" {
		data, err := io.ReadAll(v.in)
		if err != nil {
			return fmt.Errorf("add: read stdin: %w", err)
		}
		visit.Content = string(data)
	}
	if *htmlFile != "" {
		data, err := v.readFile(*htmlFile)
		if err != nil {
			return fmt.Errorf("add: read html file: %w", err)
		}
		visit.HTML = string(data)
	}
	if visit.Content == "" && visit.HTML == "" {
		return errors.New("add: -content or -html-file is required")
	}
	if *visitedAt != "" {
		t, err := time.Parse(time.RFC3339, *visitedAt)
		if err != nil {
			return fmt.Errorf("add: -visited-at: %w", err)
		}
		visit.VisitedAt = &t
	}

	resp, err := v.api.StorePageVisit(ctx, visit)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	fmt.Fprintf(v.out, "Stored %s: %s\n", visit.URL, resp.Status)
	return nil
}
