package suggest

import (
	"reflect"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"P1", "P1", 0},
		{"prod", "prd", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilar(t *testing.T) {
	keys := []string{"history.max_search", "history.max_file", "log.level", "log.format", "storage.backend"}

	tests := []struct {
		name    string
		unknown string
		want    []string
	}{
		{"typo", "log.levl", []string{"log.level"}},
		{"last segment", "backend", []string{"storage.backend"}},
		{"case", "LOG.FORMAT", []string{"log.format"}},
		{"nothing close", "remote.url.of.host", nil},
		{"empty", "  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similar(tt.unknown, keys); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Similar(%q) = %v, want %v", tt.unknown, got, tt.want)
			}
		})
	}
}

func TestSimilarRanksAndCaps(t *testing.T) {
	names := []string{"PROD3", "PROD1", "PROD", "PROD2", "TEST"}
	got := Similar("PROD", names)
	want := []string{"PROD", "PROD3", "PROD1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Similar = %v, want %v", got, want)
	}
}

func TestHint(t *testing.T) {
	if got := Hint("sysa", []string{"SYSA", "SYSB"}); got != " (did you mean SYSA, SYSB?)" {
		t.Errorf("Hint = %q", got)
	}
	if got := Hint("zzzzzz", []string{"SYSA"}); got != "" {
		t.Errorf("Hint = %q, want empty", got)
	}
}
