package embcache

import (
	"context"
	"time"

	"github.com/pasttense/pasttense/internal/db"
	"github.com/pasttense/pasttense/internal/domain"
)

type fakeEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	f.calls++
	return f.result, f.err
}

type setCall struct {
	key   string
	value []byte
	ttl   time.Duration
}

// fakeKV is an in-memory store recording writes.
type fakeKV struct {
	data   map[string][]byte
	getErr error
	setErr error
	sets   []setCall
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string][]byte)}
}

func (f *fakeKV) Get(_ context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value []byte) error {
	return f.SetWithTTL(ctx, key, value, 0)
}

func (f *fakeKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	f.sets = append(f.sets, setCall{key: key, value: value, ttl: ttl})
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	return nil
}
