package visit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pasttense/pasttense/internal/domain"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
	"github.com/pasttense/pasttense/internal/extract"
)

// --- Mocks ---

type mockRepo struct {
	seen   map[string]bool
	stored []domvisit.Visit
	err    error
}

func (m *mockRepo) Upsert(_ context.Context, v *domvisit.Visit) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	m.stored = append(m.stored, *v)
	created := !m.seen[v.ID()]
	m.seen[v.ID()] = true
	return created, nil
}

type mockExtractor struct {
	page   extract.Page
	err    error
	called bool
}

func (m *mockExtractor) Extract(_, _ string) (extract.Page, error) {
	m.called = true
	return m.page, m.err
}

type mockEmbedder struct {
	vec    []float32
	tokens int
	err    error
	got    string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.got = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: m.tokens}, nil
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, ex *mockExtractor, emb *mockEmbedder) (*Service, *prometheus.CounterVec) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_visits_total"}, []string{"outcome"})
	svc := New(repo, ex, emb, 3, counter)
	svc.now = func() time.Time { return fixedNow }
	return svc, counter
}

// --- Tests ---

func TestStore_WithContent(t *testing.T) {
	repo := &mockRepo{}
	ex := &mockExtractor{}
	emb := &mockEmbedder{vec: []float32{1, 0, 0}, tokens: 12}
	svc, counter := newTestService(repo, ex, emb)

	ctx, usage := domain.WithEmbeddingUsage(context.Background())
	created, err := svc.Store(ctx, Input{
		URL:     "https://Go.dev/blog/errors#wrap",
		Title:   "Working with Errors",
		Content: "Go 1.13 introduced error wrapping.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created")
	}
	if ex.called {
		t.Error("extractor must not run when content is given")
	}
	if emb.got != "Working with Errors\n\nGo 1.13 introduced error wrapping." {
		t.Errorf("embedded text = %q", emb.got)
	}
	if usage.Tokens() != 12 {
		t.Errorf("tokens = %d", usage.Tokens())
	}

	v := repo.stored[0]
	if v.URL() != "https://go.dev/blog/errors" {
		t.Errorf("url = %q", v.URL())
	}
	if !v.LastVisitedAt().Equal(fixedNow) {
		t.Errorf("visited_at should default to now, got %v", v.LastVisitedAt())
	}
	if len(v.Vector()) != 3 {
		t.Errorf("vector not attached")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("created")); got != 1 {
		t.Errorf("created counter = %v", got)
	}
}

func TestStore_RevisitCountsAsUpdate(t *testing.T) {
	repo := &mockRepo{}
	svc, counter := newTestService(repo, &mockExtractor{}, &mockEmbedder{vec: []float32{1, 0, 0}})
	ctx := context.Background()

	in := Input{URL: "https://example.com/a", Content: "text"}
	if _, err := svc.Store(ctx, in); err != nil {
		t.Fatal(err)
	}
	created, err := svc.Store(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second store should be an update")
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("updated")); got != 1 {
		t.Errorf("updated counter = %v", got)
	}
}

func TestStore_ExtractsFromHTML(t *testing.T) {
	repo := &mockRepo{}
	ex := &mockExtractor{page: extract.Page{Title: "Extracted", Text: "article body"}}
	emb := &mockEmbedder{vec: []float32{1, 0, 0}}
	svc, _ := newTestService(repo, ex, emb)

	at := fixedNow.Add(-time.Hour)
	_, err := svc.Store(context.Background(), Input{
		URL:       "https://example.com/post",
		HTML:      "<html><body><p>article body</p></body></html>",
		VisitedAt: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ex.called {
		t.Fatal("expected extractor call")
	}
	v := repo.stored[0]
	if v.Title() != "Extracted" || v.Content() != "article body" {
		t.Errorf("unexpected page: %q / %q", v.Title(), v.Content())
	}
	if !v.LastVisitedAt().Equal(at) {
		t.Errorf("visited_at = %v, want %v", v.LastVisitedAt(), at)
	}
}

func TestStore_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		ex   *mockExtractor
	}{
		{"missing url", Input{Content: "text"}, &mockExtractor{}},
		{"bad scheme", Input{URL: "file:///etc/hosts", Content: "text"}, &mockExtractor{}},
		{"no content", Input{URL: "https://example.com"}, &mockExtractor{}},
		{"empty extraction", Input{URL: "https://example.com", HTML: "<html></html>"}, &mockExtractor{}},
		{"extract failure", Input{URL: "https://example.com", HTML: "<html>"}, &mockExtractor{err: errors.New("bad html")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockRepo{}
			emb := &mockEmbedder{vec: []float32{1, 0, 0}}
			svc, _ := newTestService(repo, tc.ex, emb)

			_, err := svc.Store(context.Background(), tc.in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if emb.got != "" || len(repo.stored) != 0 {
				t.Error("nothing should be embedded or stored on invalid input")
			}
		})
	}
}

func TestStore_EmbedError(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{err: domain.ErrEmbeddingQuotaExceeded}
	svc, _ := newTestService(repo, &mockExtractor{}, emb)

	_, err := svc.Store(context.Background(), Input{URL: "https://example.com", Content: "text"})
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if len(repo.stored) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestStore_DimensionMismatch(t *testing.T) {
	svc, _ := newTestService(&mockRepo{}, &mockExtractor{}, &mockEmbedder{vec: []float32{1, 2}})

	_, err := svc.Store(context.Background(), Input{URL: "https://example.com", Content: "text"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestStore_RepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("redis down")}
	svc, _ := newTestService(repo, &mockExtractor{}, &mockEmbedder{vec: []float32{1, 0, 0}})

	_, err := svc.Store(context.Background(), Input{URL: "https://example.com", Content: strings.Repeat("x", 10)})
	if err == nil || errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected storage error, got %v", err)
	}
}
