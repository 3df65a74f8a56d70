package textutil_test

import (
	"testing"

	"newsroom/internal/textutil"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Council Approves Budget", 0, "council-approves-budget"},
		{"  Café: the \"new\" plan?  ", 0, "cafe-the-new-plan"},
		{"Transit / Parking", 0, "transit-parking"},
		{"Long headline words", 9, "long-head"},
		{"Long headline", 5, "long"},
		{"???", 0, "untitled"},
		{"", 0, "untitled"},
	}
	for _, tt := range tests {
		if got := textutil.Slug(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Slug(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
