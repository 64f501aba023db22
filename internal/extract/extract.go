// Package extract turns raw page HTML into readable text and a title.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// ErrNoText is returned when neither readability nor the body fallback yields text.
var ErrNoText = errors.New("no readable text in html")

// Page is the readable form of an HTML document.
type Page struct {
	Title string
	Text  string
}

// Extractor adapts FromHTML to the visit service contract.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the readable text and title of html.
func (*Extractor) Extract(html, pageURL string) (Page, error) {
	return FromHTML(html, pageURL)
}

// FromHTML extracts the article text of a page.
// Readability goes first; when it fails or finds nothing, the text of <body>
// without script, style and noscript elements is used.
// The title comes from readability, then <title>, then og:title.
func FromHTML(html, pageURL string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	var page Page
	if article, ok := readable(html, pageURL); ok {
		page.Title = collapse(article.Title)
		page.Text = collapse(article.TextContent)
	}

	if page.Text == "" {
		page.Text = bodyText(doc)
	}
	if page.Title == "" {
		page.Title = documentTitle(doc)
	}

	if page.Text == "" {
		return Page{}, ErrNoText
	}
	return page, nil
}

func readable(html, pageURL string) (readability.Article, bool) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return readability.Article{}, false
	}
	article, err := readability.FromReader(strings.NewReader(html), parsed)
	if err != nil {
		return readability.Article{}, false
	}
	return article, true
}

func bodyText(doc *goquery.Document) string {
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	body.Find("script, style, noscript, template").Remove()
	return collapse(body.Text())
}

func documentTitle(doc *goquery.Document) string {
	if t := collapse(doc.Find("head title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return collapse(og)
	}
	return ""
}

// collapse folds every whitespace run into a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
