package s3

import "testing"

func TestExtractKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://bucket.s3.ap-southeast-1.amazonaws.com/skin-analyses/u1/a1.jpg", "skin-analyses/u1/a1.jpg"},
		{"skin-analyses/u1/a1.jpg", "skin-analyses/u1/a1.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractKey(tt.in); got != tt.want {
			t.Errorf("ExtractKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
