package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/pasttense/pasttense/internal/domain"
)

var testNS = Namespace{Provider: "openai", Model: "text-embedding-3-small", Dimensions: 3}

func newCacheCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}, TotalTokens: 7}}
	kv := newFakeKV()
	counter := newCacheCounter()
	ce := New(inner, kv, testNS, 0, counter, zap.NewNop())
	ctx := context.Background()

	first, err := ce.Embed(ctx, "golang generics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 7 {
		t.Errorf("miss should report provider tokens, got %d", first.TotalTokens)
	}

	second, err := ce.Embed(ctx, "golang generics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit should report 0 tokens, got %d", second.TotalTokens)
	}
	if len(second.Embedding) != 3 || second.Embedding[2] != 0.3 {
		t.Errorf("unexpected cached vector: %v", second.Embedding)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 provider call, got %d", inner.calls)
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss counter = %v", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit counter = %v", got)
	}
}

func TestEmbed_KeyLayout(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	kv := newFakeKV()
	ce := New(inner, kv, testNS, 0, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if len(kv.sets) != 1 {
		t.Fatalf("expected 1 write, got %d", len(kv.sets))
	}
	key := kv.sets[0].key
	prefix := "pasttense:emb_cache:openai:text-embedding-3-small:3:"
	if !strings.HasPrefix(key, prefix) || len(key) != len(prefix)+64 {
		t.Errorf("unexpected key %q", key)
	}
}

func TestEmbed_ModelChangeMissesOldEntries(t *testing.T) {
	kv := newFakeKV()
	ctx := context.Background()

	small := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3}}}
	if _, err := New(small, kv, testNS, 0, nil, zap.NewNop()).Embed(ctx, "text"); err != nil {
		t.Fatal(err)
	}

	largeNS := Namespace{Provider: "openai", Model: "text-embedding-3-large", Dimensions: 4}
	large := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2, 3, 4}}}
	got, err := New(large, kv, largeNS, 0, nil, zap.NewNop()).Embed(ctx, "text")
	if err != nil {
		t.Fatal(err)
	}
	if large.calls != 1 || len(got.Embedding) != 4 {
		t.Errorf("expected a fresh 4-dim embedding, got calls=%d vec=%v", large.calls, got.Embedding)
	}
	if len(kv.sets) != 2 || kv.sets[0].key == kv.sets[1].key {
		t.Errorf("expected two distinct keys, got %+v", kv.sets)
	}

	resized := testNS
	resized.Dimensions = 256
	a := New(small, kv, testNS, 0, nil, zap.NewNop()).cacheKey("text")
	b := New(small, kv, resized, 0, nil, zap.NewNop()).cacheKey("text")
	if a == b {
		t.Error("dimension change must change the key")
	}
}

func TestEmbed_HitRecordedInUsage(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce := New(inner, newFakeKV(), testNS, 0, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	ctx, usage := domain.WithEmbeddingUsage(context.Background())
	if _, err := ce.Embed(ctx, "text"); err != nil {
		t.Fatal(err)
	}
	usage.AddTokens(0)
	if !usage.AllCached() {
		t.Error("cache hit not recorded")
	}
}

func TestEmbed_TTL(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	kv := newFakeKV()
	ce := New(inner, kv, testNS, 24*time.Hour, nil, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if kv.sets[0].ttl != 24*time.Hour {
		t.Errorf("ttl = %v, want 24h", kv.sets[0].ttl)
	}
}

func TestEmbed_StoreErrorsDegradeToProvider(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	kv := newFakeKV()
	kv.getErr = errors.New("connection reset")
	kv.setErr = errors.New("connection reset")
	ce := New(inner, kv, testNS, 0, nil, zap.NewNop())

	res, err := ce.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("store failures must not fail the request: %v", err)
	}
	if res.Embedding[0] != 0.5 {
		t.Errorf("unexpected vector: %v", res.Embedding)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.5}}}
	kv := newFakeKV()
	ce := New(inner, kv, testNS, 0, nil, zap.NewNop())
	kv.data[ce.cacheKey("text")] = []byte{1, 2, 3}

	if _, err := ce.Embed(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("expected provider call on corrupt entry, got %d", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	providerErr := errors.New("provider down")
	ce := New(&fakeEmbedder{err: providerErr}, newFakeKV(), testNS, 0, nil, zap.NewNop())

	_, err := ce.Embed(context.Background(), "text")
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0.25, -1.5, 3}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatal(err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: %v != %v", i, in[i], out[i])
		}
	}
}
