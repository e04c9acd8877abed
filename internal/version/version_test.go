package version

import "testing"

func TestIsDevelopmentVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"unknown", true},
		{"dev", true},
		{"devel", true},
		{"devel+abc123", true},
		{"devel+abc+dirty", true},

		{"v0.1.0", false},
		{"1.0.0-beta", false},
		{"v2.5.3", false},

		// Partial matches should not trigger dev
		{"develop", false},
		{"my-devel", false},
		{"DEV", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsDevelopmentVersion(tt.input)
			if got != tt.expected {
				t.Errorf("IsDevelopmentVersion(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMajor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"v2.3.4", "2"},
		{"3.0.0-rc.1", "3"},
		{"10.1", "10"},
		{"dev", "1"},
		{"garbage", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Major(tt.input); got != tt.expected {
				t.Errorf("Major(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"v1.2.3", "1.2.3", "v1.0.0-beta.1"}
	invalid := []string{"v1.2.3--", "v1.2.3-", "latest", "1.2"}
	for _, v := range valid {
		if !IsValid(v) {
			t.Errorf("IsValid(%q) = false", v)
		}
	}
	for _, v := range invalid {
		if IsValid(v) {
			t.Errorf("IsValid(%q) = true", v)
		}
	}
}
