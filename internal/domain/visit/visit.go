package visit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxContentSize is the maximum stored content size in bytes.
	MaxContentSize = 163840 // 160KB
	// MaxURLLength is the maximum accepted URL length in bytes.
	MaxURLLength = 2048
	// MaxTitleLength is the maximum stored title length in bytes.
	MaxTitleLength = 1024
)

// Visit is the page visit aggregate (immutable value object).
// A revisit of the same normalized URL maps to the same ID.
type Visit struct {
	id             string
	url            string
	title          string
	domain         string
	content        string
	firstVisitedAt time.Time
	lastVisitedAt  time.Time
	visitCount     int
	vector         []float32
}

// New validates and creates a Visit for a single browsing event.
// URL: absolute http(s), max 2048 bytes. Content: non-empty, truncated to 160KB.
// Title is truncated to 1024 bytes.
func New(rawURL, title, content string, visitedAt time.Time) (Visit, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return Visit{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return Visit{}, fmt.Errorf("content is required")
	}
	if visitedAt.IsZero() {
		return Visit{}, fmt.Errorf("visited_at is required")
	}
	visitedAt = visitedAt.UTC().Truncate(time.Millisecond)

	return Visit{
		id:             ID(normalized),
		url:            normalized,
		title:          truncate(strings.TrimSpace(title), MaxTitleLength),
		domain:         hostOf(normalized),
		content:        truncate(content, MaxContentSize),
		firstVisitedAt: visitedAt,
		lastVisitedAt:  visitedAt,
		visitCount:     1,
	}, nil
}

// Reconstruct creates a Visit without validation (storage hydration).
func Reconstruct(
	id, rawURL, title, domain, content string,
	firstVisitedAt, lastVisitedAt time.Time, visitCount int,
) Visit {
	return Visit{
		id: id, url: rawURL, title: title, domain: domain, content: content,
		firstVisitedAt: firstVisitedAt, lastVisitedAt: lastVisitedAt, visitCount: visitCount,
	}
}

// NormalizeURL lowercases scheme and host, drops the fragment and
// turns an empty path into "/".
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}
	if len(raw) > MaxURLLength {
		return "", fmt.Errorf("url too long (max %d bytes)", MaxURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("url is malformed: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("url must be absolute http or https")
	}
	if u.Host == "" {
		return "", fmt.Errorf("url must have a host")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String(), nil
}

// ID returns the storage identifier of a normalized URL: the first 32 hex
// chars of its SHA-256.
func ID(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])[:32]
}

// ID returns the visit identifier.
func (v *Visit) ID() string { return v.id }

// URL returns the normalized page URL.
func (v *Visit) URL() string { return v.url }

// Title returns the page title.
func (v *Visit) Title() string { return v.title }

// Domain returns the lowercased host without port.
func (v *Visit) Domain() string { return v.domain }

// Content returns the stored readable text.
func (v *Visit) Content() string { return v.content }

// FirstVisitedAt returns the earliest recorded visit time.
func (v *Visit) FirstVisitedAt() time.Time { return v.firstVisitedAt }

// LastVisitedAt returns the latest recorded visit time.
func (v *Visit) LastVisitedAt() time.Time { return v.lastVisitedAt }

// VisitCount returns how many times the page was stored.
func (v *Visit) VisitCount() int { return v.visitCount }

// Vector returns the embedding vector.
func (v *Visit) Vector() []float32 { return v.vector }

// SetVector sets the vector in place (mutation).
func (v *Visit) SetVector(vec []float32) { v.vector = vec }

// EmbeddingText is the text sent to the document embedder.
func (v *Visit) EmbeddingText() string {
	if v.title == "" {
		return v.content
	}
	return v.title + "\n\n" + v.content
}

func hostOf(normalizedURL string) string {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
