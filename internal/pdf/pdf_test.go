package pdf

import "testing"

func TestURLEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<html></html>", "%3Chtml%3E%3C%2Fhtml%3E"},
		{"a b", "a%20b"},
		{"1+1", "1%2B1"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := urlEncode(tt.in); got != tt.want {
			t.Errorf("urlEncode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
