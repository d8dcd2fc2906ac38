// Package ui builds the message payload fragments the bot sends back to
// Discord: embeds, button rows, select menus, and the small formatting
// helpers they share. Structs here mirror the wire shape so they can be
// marshalled straight into interaction responses.
package ui

import "time"

// Embed accent colors.
const (
	ColorSuccess = 0x00ff00
	ColorError   = 0xff0000
	ColorWarning = 0xffa500
	ColorInfo    = 0x4285f4
	ColorShare   = 0x00d4aa
	ColorDefault = 0x5865f2
)

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

func Success(title, description string) Embed {
	return Embed{
		Title:       "✅ " + title,
		Description: description,
		Color:       ColorSuccess,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func Error(title, description string) Embed {
	return Embed{
		Title:       "❌ " + title,
		Description: description,
		Color:       ColorError,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func Warning(title, description string) Embed {
	return Embed{
		Title:       "⚠️ " + title,
		Description: description,
		Color:       ColorWarning,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func Info(title, description string) Embed {
	return Embed{
		Title:       title,
		Description: description,
		Color:       ColorInfo,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

func Loading(description string) Embed {
	return Embed{
		Title:       "⏳ Working",
		Description: description,
		Color:       ColorDefault,
	}
}
