package router

import "github.com/hinabot/hinabot/internal/ui"

// Render is the router's answer to one interaction: everything the
// transport needs to produce or edit the visible response.
type Render struct {
	Content    string
	Embeds     []ui.Embed
	Components []ui.ActionRow
	Ephemeral  bool
}

func renderEmbed(embed ui.Embed) Render {
	return Render{Embeds: []ui.Embed{embed}}
}

func renderEphemeral(embed ui.Embed) Render {
	return Render{Embeds: []ui.Embed{embed}, Ephemeral: true}
}
