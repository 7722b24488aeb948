package cli

import (
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name               string
		badges, files, hit int
		want               string
	}{
		{"fresh", 2, 4, 0, iconFresh},
		{"all cached", 1, 2, 2, iconCached},
		{"partial", 2, 4, 1, "1 " + iconCached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := statsLine(tt.badges, tt.files, 2048, tt.hit)
			if !strings.Contains(line, tt.want) {
				t.Errorf("statsLine() = %q, should contain %q", line, tt.want)
			}
			if !strings.Contains(line, "2.0 KiB") {
				t.Errorf("statsLine() = %q, should contain size", line)
			}
		})
	}
}
