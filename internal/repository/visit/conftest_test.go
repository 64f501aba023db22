package visit

import (
	"context"
	"strconv"
	"sync"

	"github.com/pasttense/pasttense/internal/db"
)

// memStore is an in-memory hash store with FT.CREATE bookkeeping.
// HMerge follows the same rules as the Redis script, under one lock.
type memStore struct {
	mu        sync.Mutex
	hashes    map[string]map[string]string
	indexes   map[string]*db.IndexDefinition
	createErr error
	mergeErr  error
	infoErr   error
}

func newMemStore() *memStore {
	return &memStore{
		hashes:  make(map[string]map[string]string),
		indexes: make(map[string]*db.IndexDefinition),
	}
}

func (m *memStore) HMerge(_ context.Context, key string, hm *db.HashMerge) (int64, error) {
	if m.mergeErr != nil {
		return 0, m.mergeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string)
		m.hashes[key] = h
	}

	stored, err := strconv.ParseInt(h[hm.LatestField], 10, 64)
	newest := err != nil || hm.Latest >= stored
	if newest {
		h[hm.LatestField] = strconv.FormatInt(hm.Latest, 10)
	}
	if first, err := strconv.ParseInt(h[hm.EarliestField], 10, 64); err != nil || hm.Earliest < first {
		h[hm.EarliestField] = strconv.FormatInt(hm.Earliest, 10)
	}
	for k, v := range hm.Fields {
		_, exists := h[k]
		switch {
		case v == "":
			if !exists {
				h[k] = ""
			}
		case newest || !exists:
			h[k] = v
		}
	}

	n, _ := strconv.ParseInt(h[hm.Counter], 10, 64)
	n++
	h[hm.Counter] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *memStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h, ok := m.hashes[k]
		if !ok {
			continue
		}
		cp := make(map[string]string, len(h))
		for f, v := range h {
			cp[f] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	m.indexes[def.Name] = def
	return nil
}

func (m *memStore) IndexExists(_ context.Context, name string) (bool, error) {
	if m.infoErr != nil {
		return false, m.infoErr
	}
	_, ok := m.indexes[name]
	return ok, nil
}
