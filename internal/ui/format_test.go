package ui

import "testing"

func TestFormatFileSize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{8 * 1024 * 1024, "8.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tc := range cases {
		if got := FormatFileSize(tc.bytes); got != tc.want {
			t.Fatalf("FormatFileSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestFileIcon(t *testing.T) {
	t.Parallel()

	cases := []struct {
		mime string
		want string
	}{
		{"application/vnd.google-apps.folder", "📁"},
		{"image/png", "🖼️"},
		{"video/mp4", "🎬"},
		{"application/pdf", "📕"},
		{"application/zip", "🗜️"},
		{"text/plain", "📄"},
		{"application/octet-stream", "📦"},
	}
	for _, tc := range cases {
		if got := FileIcon(tc.mime); got != tc.want {
			t.Fatalf("FileIcon(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("a longer string", 8); got != "a longe…" {
		t.Fatalf("unexpected: %q", got)
	}
	if got := Truncate("héllo wörld", 5); got != "héll…" {
		t.Fatalf("rune-aware truncation failed: %q", got)
	}
}
