package filter

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewRangeFilter(t *testing.T) {
	tests := []struct {
		name     string
		min, max *float64
		wantErr  string
	}{
		{"min only", floatPtr(1), nil, ""},
		{"max only", nil, floatPtr(10), ""},
		{"both", floatPtr(1), floatPtr(10), ""},
		{"equal", floatPtr(5), floatPtr(5), ""},
		{"none", nil, nil, "at least one range boundary"},
		{"inverted", floatPtr(10), floatPtr(1), "exceeds upper bound"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRangeFilter(tt.min, tt.max)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (r.Min() == nil) != (tt.min == nil) || (r.Max() == nil) != (tt.max == nil) {
				t.Error("bounds mismatch")
			}
		})
	}
}

func TestNewMatch(t *testing.T) {
	c, err := NewMatch("domain", "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsMatch() || c.IsRange() {
		t.Error("expected match condition")
	}
	if c.Key() != "domain" || c.Match() != "example.com" {
		t.Errorf("got %q=%q", c.Key(), c.Match())
	}

	if _, err := NewMatch("", "x"); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewMatch("domain", ""); err == nil {
		t.Error("expected error for empty value")
	}
}

func TestNewRange(t *testing.T) {
	r, _ := NewRangeFilter(floatPtr(0), nil)
	c, err := NewRange("last_visited_at", r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsRange() || c.IsMatch() {
		t.Error("expected range condition")
	}
	if _, err := NewRange("", r); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestNewExpression(t *testing.T) {
	e, err := NewExpression()
	if err != nil || !e.IsEmpty() {
		t.Fatalf("expected empty expression, err=%v", err)
	}

	c, _ := NewMatch("domain", "a.com")
	e, err = NewExpression(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.IsEmpty() || len(e.Must()) != 1 {
		t.Errorf("unexpected must: %v", e.Must())
	}

	many := make([]Condition, MaxConditions+1)
	for i := range many {
		many[i] = c
	}
	if _, err := NewExpression(many...); err == nil {
		t.Error("expected error for too many conditions")
	}
}
