package output

import (
	"strings"
	"testing"
	"time"

	"github.com/marcus/mfx/internal/models"
)

func TestFormatTimeAgoJustNow(t *testing.T) {
	now := time.Now()
	tests := []time.Time{
		now,
		now.Add(-30 * time.Second),
		now.Add(-59 * time.Second),
	}

	for _, tm := range tests {
		result := FormatTimeAgo(tm)
		if result != "just now" {
			t.Errorf("FormatTimeAgo(%v) = %q, want 'just now'", tm, result)
		}
	}
}

func TestFormatTimeAgoMinutes(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{1 * time.Minute, "1m ago"},
		{2 * time.Minute, "2m ago"},
		{30 * time.Minute, "30m ago"},
		{59 * time.Minute, "59m ago"},
	}

	for _, tc := range tests {
		tm := time.Now().Add(-tc.duration)
		result := FormatTimeAgo(tm)
		if result != tc.expected {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tc.duration, result, tc.expected)
		}
	}
}

func TestFormatTimeAgoHours(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{1 * time.Hour, "1h ago"},
		{2 * time.Hour, "2h ago"},
		{12 * time.Hour, "12h ago"},
		{23 * time.Hour, "23h ago"},
	}

	for _, tc := range tests {
		tm := time.Now().Add(-tc.duration)
		result := FormatTimeAgo(tm)
		if result != tc.expected {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tc.duration, result, tc.expected)
		}
	}
}

func TestFormatTimeAgoDays(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{24 * time.Hour, "1d ago"},
		{48 * time.Hour, "2d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}

	for _, tc := range tests {
		tm := time.Now().Add(-tc.duration)
		result := FormatTimeAgo(tm)
		if result != tc.expected {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tc.duration, result, tc.expected)
		}
	}
}

func TestFormatTimeAgoDate(t *testing.T) {
	tm := time.Now().Add(-8 * 24 * time.Hour)
	result := FormatTimeAgo(tm)
	expected := tm.Format("2006-01-02")
	if result != expected {
		t.Errorf("FormatTimeAgo(-8d) = %q, want %q", result, expected)
	}
}

func TestFormatTimeAgoEdgeCases(t *testing.T) {
	// Exactly at minute boundary
	tm := time.Now().Add(-60 * time.Second)
	result := FormatTimeAgo(tm)
	if result != "1m ago" {
		t.Errorf("At 60s boundary: got %q, want '1m ago'", result)
	}

	// Exactly at hour boundary
	tm = time.Now().Add(-60 * time.Minute)
	result = FormatTimeAgo(tm)
	if result != "1h ago" {
		t.Errorf("At 60m boundary: got %q, want '1h ago'", result)
	}

	// Exactly at day boundary
	tm = time.Now().Add(-24 * time.Hour)
	result = FormatTimeAgo(tm)
	if result != "1d ago" {
		t.Errorf("At 24h boundary: got %q, want '1d ago'", result)
	}

	// Exactly at week boundary
	tm = time.Now().Add(-7 * 24 * time.Hour)
	result = FormatTimeAgo(tm)
	expected := tm.Format("2006-01-02")
	if result != expected {
		t.Errorf("At 7d boundary: got %q, want %q", result, expected)
	}
}

func TestSectionHeader(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"search history", "\nSEARCH HISTORY:\n"},
		{"Favorites", "\nFAVORITES:\n"},
		{"SESSIONS", "\nSESSIONS:\n"},
	}

	for _, tc := range tests {
		result := SectionHeader(tc.title)
		if result != tc.expected {
			t.Errorf("SectionHeader(%q) = %q, want %q", tc.title, result, tc.expected)
		}
	}
}

func TestBulletList(t *testing.T) {
	items := []string{"item 1", "item 2", "item 3"}
	result := BulletList(items, 2)

	expected := []string{"  - item 1", "  - item 2", "  - item 3"}
	for i, line := range result {
		if line != expected[i] {
			t.Errorf("BulletList[%d] = %q, want %q", i, line, expected[i])
		}
	}
}

func TestBulletListNoIndent(t *testing.T) {
	items := []string{"a", "b"}
	result := BulletList(items, 0)

	if result[0] != "- a" || result[1] != "- b" {
		t.Error("Bullet list with 0 indent should have '- ' prefix only")
	}
}

func TestFormatStatus(t *testing.T) {
	for _, s := range []models.ProfileStatus{models.StatusActive, models.StatusInactive, models.StatusUnverified} {
		if result := FormatStatus(s); !strings.Contains(result, string(s)) {
			t.Errorf("FormatStatus(%q) = %q, should contain status", s, result)
		}
	}
	if FormatStatus(models.StatusUnset) != "" {
		t.Error("unset status should render empty")
	}
}

func TestStatusBadgeUnknown(t *testing.T) {
	if result := StatusBadge(models.ProfileStatus("odd")); !strings.HasPrefix(result, "?") {
		t.Errorf("StatusBadge(odd) = %q, want ? symbol", result)
	}
}

func TestFormatNode(t *testing.T) {
	n := models.NewNode(models.NodeOptions{
		Kind:  models.KindResource,
		Label: "USER.PDS",
		Path:  "USER.PDS",
		Tag:   models.ContextTag{Base: models.TagPDS, Favorite: true},
	})
	line := FormatNode(n, 2)
	if !strings.HasPrefix(line, "    ") {
		t.Errorf("FormatNode depth 2 = %q, want 4-space indent", line)
	}
	for _, want := range []string{"USER.PDS", "pds_fav"} {
		if !strings.Contains(line, want) {
			t.Errorf("FormatNode = %q, missing %q", line, want)
		}
	}
}
