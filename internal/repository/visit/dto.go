package visit

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pasttense/pasttense/internal/db"
	domvisit "github.com/pasttense/pasttense/internal/domain/visit"
)

// buildMerge describes how a single visit folds into its stored hash:
// page fields follow the latest visit, first_visited_at keeps the earliest,
// visit_count grows by one. An empty title keeps the stored one.
func buildMerge(v *domvisit.Visit) *db.HashMerge {
	return &db.HashMerge{
		Fields: map[string]string{
			FieldURL:     v.URL(),
			FieldTitle:   v.Title(),
			FieldDomain:  v.Domain(),
			FieldContent: v.Content(),
			FieldVector:  vectorToBytes(v.Vector()),
		},
		LatestField:   FieldLastVisitedAt,
		Latest:        v.LastVisitedAt().UnixMilli(),
		EarliestField: FieldFirstVisitedAt,
		Earliest:      v.FirstVisitedAt().UnixMilli(),
		Counter:       FieldVisitCount,
	}
}

// parseHashFields converts a stored hash back into a Visit. The vector is not loaded.
func parseHashFields(key string, m map[string]string) domvisit.Visit {
	count, _ := strconv.Atoi(m[FieldVisitCount])
	return domvisit.Reconstruct(
		strings.TrimPrefix(key, KeyPrefix),
		m[FieldURL], m[FieldTitle], m[FieldDomain], m[FieldContent],
		ParseMillis(m[FieldFirstVisitedAt]), ParseMillis(m[FieldLastVisitedAt]),
		count,
	)
}

// ParseMillis reads unix milliseconds; an empty or malformed value yields the zero time.
func ParseMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// vectorToBytes serializes []float32 to FLOAT32 little-endian bytes.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
