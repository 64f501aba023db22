package domain

import (
	"context"
	"sync/atomic"
)

type usageKey struct{}

// EmbeddingUsage tallies the embedding calls made while serving one request.
// It is safe for concurrent use. A nil *EmbeddingUsage drops writes and reads as zero.
type EmbeddingUsage struct {
	tokens    atomic.Int64
	calls     atomic.Int64
	cacheHits atomic.Int64
}

// WithEmbeddingUsage attaches a fresh tally to ctx.
func WithEmbeddingUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// EmbeddingUsageFrom returns the tally attached to ctx, or nil.
func EmbeddingUsageFrom(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(usageKey{}).(*EmbeddingUsage)
	return u
}

// AddTokens records one completed embedding call.
func (u *EmbeddingUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.calls.Add(1)
	u.tokens.Add(int64(n))
}

// AddCacheHit records that an embedding was served from the cache.
func (u *EmbeddingUsage) AddCacheHit() {
	if u != nil {
		u.cacheHits.Add(1)
	}
}

// Tokens is the provider token total.
func (u *EmbeddingUsage) Tokens() int {
	if u == nil {
		return 0
	}
	return int(u.tokens.Load())
}

// Calls is the number of embeddings produced, cached or not.
func (u *EmbeddingUsage) Calls() int {
	if u == nil {
		return 0
	}
	return int(u.calls.Load())
}

// AllCached reports whether every call was a cache hit.
func (u *EmbeddingUsage) AllCached() bool {
	n := u.Calls()
	return n > 0 && int(u.cacheHits.Load()) >= n
}
