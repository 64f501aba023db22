package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestRun_Tabs(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/page_visit":
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			_, _ = w.Write([]byte(`{"results":[]}`))
		}
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		args  []string
		stdin string
		want  []string
	}{
		{"add", []string{"-api", srv.URL, "add", "-url", "https://a.example", "-content", "-"}, "text", []string{"/page_visit"}},
		{"search", []string{"-api", srv.URL, "search", "golang"}, "", []string{"/semantic_search"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mu.Lock()
			paths = nil
			mu.Unlock()

			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tc.args, strings.NewReader(tc.stdin), &stdout, &stderr)
			if err != nil {
				t.Fatalf("run: %v (stderr %s)", err, stderr.String())
			}

			mu.Lock()
			defer mu.Unlock()
			if strings.Join(paths, ",") != strings.Join(tc.want, ",") {
				t.Errorf("paths = %v, want %v", paths, tc.want)
			}
		})
	}
}

func TestRun_UnknownTab(t *testing.T) {
	err := run(context.Background(), []string{"history"}, strings.NewReader(""), io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
}
