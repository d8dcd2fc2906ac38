package ui

import (
	"fmt"
	"strings"
)

// FormatFileSize renders a byte count for display. Drive reports sizes
// as decimal strings, so the caller converts first.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FileIcon picks a display emoji from a mime type.
func FileIcon(mimeType string) string {
	switch {
	case mimeType == "application/vnd.google-apps.folder":
		return "📁"
	case strings.HasPrefix(mimeType, "image/"):
		return "🖼️"
	case strings.HasPrefix(mimeType, "video/"):
		return "🎬"
	case strings.HasPrefix(mimeType, "audio/"):
		return "🎵"
	case mimeType == "application/pdf":
		return "📕"
	case strings.Contains(mimeType, "zip"), strings.Contains(mimeType, "archive"),
		strings.Contains(mimeType, "compressed"):
		return "🗜️"
	case strings.HasPrefix(mimeType, "text/"), strings.Contains(mimeType, "document"):
		return "📄"
	default:
		return "📦"
	}
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
