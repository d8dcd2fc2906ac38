package discord

import (
	"context"
	"fmt"
	"net/http"
)

// Application command option types used in the schemas below.
const (
	schemaSubcommand = 1
	schemaString     = 3
	schemaAttachment = 11
)

type commandOption struct {
	Type        int             `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required,omitempty"`
	Choices     []commandChoice `json:"choices,omitempty"`
	Options     []commandOption `json:"options,omitempty"`
}

type commandChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type commandSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []commandOption `json:"options,omitempty"`
}

func filenameOption() commandOption {
	return commandOption{
		Type: schemaString, Name: "filename",
		Description: "Name of the file in your Drive", Required: true,
	}
}

// commandSchemas declares every slash command the bot serves.
func commandSchemas() []commandSchema {
	return []commandSchema{
		{
			Name:        "gdrive",
			Description: "Manage your Google Drive",
			Options: []commandOption{
				{Type: schemaSubcommand, Name: "link", Description: "Connect your Google Drive"},
				{Type: schemaSubcommand, Name: "verify", Description: "Finish linking with your authorization code", Options: []commandOption{
					{Type: schemaString, Name: "code", Description: "The code or redirect URL from Google", Required: true},
				}},
				{Type: schemaSubcommand, Name: "upload", Description: "Upload a file into your Drive", Options: []commandOption{
					{Type: schemaAttachment, Name: "file", Description: "The file to upload", Required: true},
				}},
				{Type: schemaSubcommand, Name: "list", Description: "Browse your files and folders"},
				{Type: schemaSubcommand, Name: "share", Description: "Share a file with a public link", Options: []commandOption{filenameOption()}},
				{Type: schemaSubcommand, Name: "download", Description: "Get a download link for a file", Options: []commandOption{filenameOption()}},
				{Type: schemaSubcommand, Name: "delete", Description: "Delete a file, with confirmation", Options: []commandOption{filenameOption()}},
				{Type: schemaSubcommand, Name: "status", Description: "Show your linked account and storage"},
				{Type: schemaSubcommand, Name: "unlink", Description: "Disconnect your Google Drive"},
				{Type: schemaSubcommand, Name: "help", Description: "Show Drive command help"},
			},
		},
		{
			Name:        "search",
			Description: "Search the web",
			Options: []commandOption{
				{Type: schemaString, Name: "query", Description: "What to search for", Required: true},
				{Type: schemaString, Name: "type", Description: "Kind of results", Choices: []commandChoice{
					{Name: "Web", Value: "web"},
					{Name: "Images", Value: "image"},
					{Name: "News", Value: "news"},
					{Name: "Videos", Value: "video"},
					{Name: "Documents", Value: "document"},
				}},
			},
		},
		{Name: "ping", Description: "Check that the bot is alive"},
		{Name: "help", Description: "List available commands"},
		{Name: "stats", Description: "Show bot runtime information"},
	}
}

// SyncCommands registers the slash command set, either globally or per
// guild when guild ids are configured. Guild registration propagates
// immediately, which is what you want during development.
func (c *Connector) SyncCommands(ctx context.Context, guildIDs []string) error {
	schemas := commandSchemas()
	if len(guildIDs) == 0 {
		endpoint := fmt.Sprintf("%s/applications/%s/commands", c.apiBase, c.appID)
		if err := c.putJSON(ctx, endpoint, schemas); err != nil {
			return fmt.Errorf("sync global commands: %w", err)
		}
		c.logger.Info("commands registered", "scope", "global", "count", len(schemas))
		return nil
	}
	for _, guildID := range guildIDs {
		endpoint := fmt.Sprintf("%s/applications/%s/guilds/%s/commands", c.apiBase, c.appID, guildID)
		if err := c.putJSON(ctx, endpoint, schemas); err != nil {
			return fmt.Errorf("sync commands for guild %s: %w", guildID, err)
		}
		c.logger.Info("commands registered", "scope", "guild", "guild_id", guildID, "count", len(schemas))
	}
	return nil
}

func (c *Connector) putJSON(ctx context.Context, endpoint string, body any) error {
	return c.sendJSON(ctx, http.MethodPut, endpoint, body)
}
