package token

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Format(t *testing.T) {
	now := time.UnixMilli(1699000000123)
	tok := New("P1", now)

	if !strings.HasPrefix(tok, "product_P1_1699000000123_") {
		t.Fatalf("New() = %q, неожиданный префикс", tok)
	}
	suffix := tok[strings.LastIndexByte(tok, '_')+1:]
	if len(suffix) != suffixLen {
		t.Errorf("длина суффикса = %d, ожидалось %d", len(suffix), suffixLen)
	}
	if !isBase36(suffix) {
		t.Errorf("суффикс %q содержит символы вне base36", suffix)
	}
}

func TestNew_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for range 1000 {
		tok := New("P1", now)
		if seen[tok] {
			t.Fatalf("повторный токен %q", tok)
		}
		seen[tok] = true
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		wantID string
		wantOK bool
	}{
		{"простой", "product_P1_169900_abcd", "P1", true},
		{"идентификатор с подчёркиванием", "product_SKU_42_A_1699000000000_x1y2z3w4v", "SKU_42_A", true},
		{"без префикса", "P1_169900_abcd", "", false},
		{"нет времени", "product_P1_abcd", "", false},
		{"время не число", "product_P1_12ab_abcd", "", false},
		{"пустой идентификатор", "product__169900_abcd", "", false},
		{"пустой суффикс", "product_P1_169900_", "", false},
		{"суффикс в верхнем регистре", "product_P1_169900_ABCD", "", false},
		{"пустая строка", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := Parse(tt.token)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("Parse(%q) = (%q, %v), ожидалось (%q, %v)", tt.token, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, id := range []string{"P1", "ABC-123", "a_b_c", "Обувь 42"} {
		tok := New(id, time.Now())
		got, ok := Parse(tok)
		if !ok || got != id {
			t.Errorf("Parse(New(%q)) = (%q, %v)", id, got, ok)
		}
	}
}
