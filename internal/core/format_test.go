package core

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.00 B"},
		{1, "1.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1500, "1.46 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1024.00 TB"},
		{-5, "0.00 B"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
