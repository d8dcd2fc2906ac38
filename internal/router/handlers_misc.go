package router

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hinabot/hinabot/internal/ui"
)

func (r *Router) handlePing(ctx context.Context, in *Interaction) error {
	return in.Resolve(ctx, Render{Content: "🏓 Pong!"})
}

func (r *Router) handleHelp(ctx context.Context, in *Interaction) error {
	embed := ui.Info("Hina Bot commands", "")
	embed.Fields = []ui.EmbedField{
		{Name: "/gdrive link", Value: "Start connecting your Google Drive."},
		{Name: "/gdrive verify", Value: "Finish linking with the code Google gave you."},
		{Name: "/gdrive upload", Value: "Upload an attachment into your categorized folders."},
		{Name: "/gdrive list", Value: "Browse your uploaded files and folders."},
		{Name: "/gdrive share", Value: "Make a file viewable by anyone with the link."},
		{Name: "/gdrive download", Value: "Get a download link for a file."},
		{Name: "/gdrive delete", Value: "Delete a file, with confirmation."},
		{Name: "/gdrive status", Value: "Show your linked account and storage usage."},
		{Name: "/gdrive unlink", Value: "Disconnect your Google Drive."},
		{Name: "/search", Value: "Search the web, images, news, videos, or documents."},
		{Name: "/ping · /stats", Value: "Liveness and runtime information."},
	}
	return in.Resolve(ctx, renderEphemeral(embed))
}

func (r *Router) handleStats(ctx context.Context, in *Interaction) error {
	uptime := time.Since(r.startedAt).Round(time.Second)
	embed := ui.Info("Bot stats", "")
	embed.Fields = []ui.EmbedField{
		{Name: "Uptime", Value: uptime.String(), Inline: true},
		{Name: "Linked accounts", Value: fmt.Sprintf("%d", r.credentials.Count()), Inline: true},
		{Name: "Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
	}
	return in.Resolve(ctx, renderEmbed(embed))
}
