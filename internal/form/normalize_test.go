package form

import "testing"

func TestIsBlank(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"nan", true},
		{"NaN", true},
		{" NAN ", true},
		{"0", false},
		{"nankeen", false},
		{"Jane Doe", false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.in); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0.00"},
		{"   ", "0.00"},
		{"nan", "0.00"},
		{"abc", "0.00"},
		{"12a34", "0.00"},
		{"0", "0.00"},
		{"1234.5", "1,234.50"},
		{"1,234.5", "1,234.50"},
		{" 999 ", "999.00"},
		{"1234567.891", "1,234,567.89"},
		{"-1234.5", "-1,234.50"},
	}
	for _, tt := range tests {
		if got := NormalizeAmount(tt.in); got != tt.want {
			t.Errorf("NormalizeAmount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "UNKNOWN"},
		{"   ", "UNKNOWN"},
		{"nan", "UNKNOWN"},
		{`A/B\C`, "ABC"},
		{`***`, "UNKNOWN"},
		{" Jane\t\tDoe ", "Jane Doe"},
		{`Acme: "West" <LLC>`, "Acme West LLC"},
		{"Multi\nLine Name", "Multi Line Name"},
	}
	for _, tt := range tests {
		if got := CleanFilename(tt.in); got != tt.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeYear(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "YEAR"},
		{"  ", "YEAR"},
		{"nan", "YEAR"},
		{"2023", "2023"},
		{" 2023 ", "2023"},
		{"FY23", "23"},
		{"2023.0", "20230"},
		{"n/a", "n/a"},
	}
	for _, tt := range tests {
		if got := SafeYear(tt.in); got != tt.want {
			t.Errorf("SafeYear(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
