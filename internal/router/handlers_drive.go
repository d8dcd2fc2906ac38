package router

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hinabot/hinabot/internal/boterr"
	"github.com/hinabot/hinabot/internal/drive"
	"github.com/hinabot/hinabot/internal/session"
	"github.com/hinabot/hinabot/internal/ui"
)

func (r *Router) handleLink(ctx context.Context, in *Interaction) error {
	event := in.Event()
	if r.credentials.IsLinked(event.UserID) {
		return in.Resolve(ctx, renderEphemeral(ui.Info("Already linked",
			"Your Google Drive is already connected. Use `/gdrive unlink` first if you want to relink.")))
	}

	consentURL := r.authURL.AuthCodeURL(uuid.NewString())
	embed := ui.Info("Link your Google Drive",
		"1. Open the consent page below and approve access.\n"+
			"2. Copy the code (or the full redirect URL) Google gives you.\n"+
			"3. Finish with `/gdrive verify code:<your code>`.")
	return in.Resolve(ctx, Render{
		Embeds:     []ui.Embed{embed},
		Components: []ui.ActionRow{ui.Row(ui.LinkButton("Open Google consent", consentURL))},
		Ephemeral:  true,
	})
}

func (r *Router) handleVerify(ctx context.Context, in *Interaction) error {
	event := in.Event()
	code, err := extractAuthCode(event.Option("code"))
	if err != nil {
		return err
	}
	if err := r.credentials.Store(ctx, event.UserID, code); err != nil {
		return err
	}
	return in.Resolve(ctx, renderEphemeral(ui.Success("Drive linked",
		"Your Google Drive is connected and your folder structure is ready. Try `/gdrive upload`.")))
}

// extractAuthCode accepts either a bare authorization code or the full
// redirect URL a user pasted.
func extractAuthCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: authorization code is empty", boterr.ErrValidation)
	}
	if strings.Contains(trimmed, "code=") {
		if parsed, err := url.Parse(trimmed); err == nil {
			if fromQuery := parsed.Query().Get("code"); fromQuery != "" {
				return fromQuery, nil
			}
		}
		tail := trimmed[strings.Index(trimmed, "code=")+len("code="):]
		if amp := strings.IndexByte(tail, '&'); amp >= 0 {
			tail = tail[:amp]
		}
		if tail == "" {
			return "", fmt.Errorf("%w: could not find a code in that URL", boterr.ErrValidation)
		}
		return tail, nil
	}
	return trimmed, nil
}

func (r *Router) handleUpload(ctx context.Context, in *Interaction) error {
	event := in.Event()
	attachment := event.Attachment
	if attachment == nil {
		return fmt.Errorf("%w: attach a file to upload", boterr.ErrValidation)
	}
	if err := ValidateFileName(attachment.Filename); err != nil {
		return err
	}
	if err := ValidateFileSize(attachment.Size, r.uploadMaxBytes); err != nil {
		return err
	}

	folders, err := r.folders.Folders(ctx, event.UserID)
	if err != nil {
		return err
	}
	category := session.Categorize(attachment.ContentType)
	parentID := folders[category]
	if parentID == "" {
		parentID = folders[session.RootFolderName]
	}

	content, err := r.attachments.Fetch(ctx, attachment.URL)
	if err != nil {
		return fmt.Errorf("fetch attachment: %w", err)
	}
	uploaded, err := r.drive.Upload(ctx, event.UserID, parentID, attachment.Filename, attachment.ContentType, content)
	if err != nil {
		return err
	}

	embed := ui.Success("File uploaded",
		fmt.Sprintf("%s **%s** is now in your **%s** folder.",
			ui.FileIcon(attachment.ContentType), uploaded.Name, category))
	embed.Fields = []ui.EmbedField{
		{Name: "Size", Value: ui.FormatFileSize(attachment.Size), Inline: true},
		{Name: "Category", Value: category, Inline: true},
	}
	render := Render{Embeds: []ui.Embed{embed}}
	if uploaded.WebViewLink != "" {
		render.Components = []ui.ActionRow{ui.Row(ui.LinkButton("Open in Drive", uploaded.WebViewLink))}
	}
	return in.Resolve(ctx, render)
}

func (r *Router) handleList(ctx context.Context, in *Interaction) error {
	return r.resolveListing(ctx, in, "", "Your Drive")
}

func (r *Router) handleFolderOpen(ctx context.Context, in *Interaction) error {
	id, err := ParseActionID(in.Event().CustomID)
	if err != nil {
		return err
	}
	if len(id.Params) == 0 || id.Params[0] == "" {
		return fmt.Errorf("%w: folder id missing from custom id", boterr.ErrUnknownAction)
	}
	return r.resolveListing(ctx, in, id.Params[0], "Folder contents")
}

func (r *Router) handleFolderRoot(ctx context.Context, in *Interaction) error {
	return r.resolveListing(ctx, in, "", "Your Drive")
}

func (r *Router) resolveListing(ctx context.Context, in *Interaction, folderID, title string) error {
	event := in.Event()
	listing, err := r.drive.ListChildren(ctx, event.UserID, folderID)
	if err != nil {
		return err
	}

	embed := ui.Info(title, "")
	if len(listing.Folders) == 0 && len(listing.Files) == 0 {
		embed.Description = "This folder is empty."
	}
	for _, folder := range listing.Folders {
		embed.Description += fmt.Sprintf("📁 **%s**\n", ui.Truncate(folder.Name, 60))
	}
	for _, file := range listing.Files {
		line := fmt.Sprintf("%s %s", ui.FileIcon(file.MimeType), ui.Truncate(file.Name, 60))
		if size := file.SizeBytes(); size > 0 {
			line += fmt.Sprintf(" (%s)", ui.FormatFileSize(size))
		}
		embed.Description += line + "\n"
	}

	var buttons []ui.Component
	for _, folder := range listing.Folders {
		customID, err := BuildActionID("folder", "open", folder.ID)
		if err != nil {
			r.logger.Warn("skipping unaddressable folder", "folder_id", folder.ID, "error", err)
			continue
		}
		buttons = append(buttons, ui.Button(ui.StyleSecondary, ui.Truncate(folder.Name, 40), customID))
	}
	rows := ui.Rows(buttons...)

	rootID, _ := BuildActionID("folder", "root")
	refreshID := rootID
	if folderID != "" {
		if reopened, err := BuildActionID("folder", "open", folderID); err == nil {
			refreshID = reopened
		}
	}
	nav := []ui.Component{ui.Button(ui.StyleSecondary, "Refresh", refreshID)}
	if folderID != "" {
		nav = append(nav, ui.Button(ui.StylePrimary, "Back to root", rootID))
	}
	rows = append(rows, ui.Row(nav...))
	return in.Resolve(ctx, Render{Embeds: []ui.Embed{embed}, Components: rows})
}

func (r *Router) handleShare(ctx context.Context, in *Interaction) error {
	event := in.Event()
	file, err := r.findByName(ctx, event.UserID, event.Option("filename"))
	if err != nil {
		return err
	}
	if err := r.drive.CreatePublicPermission(ctx, event.UserID, file.ID); err != nil {
		return err
	}
	shared, err := r.drive.GetMetadata(ctx, event.UserID, file.ID)
	if err != nil {
		return err
	}

	embed := ui.Embed{
		Title:       "🔗 File shared",
		Description: fmt.Sprintf("**%s** is now viewable by anyone with the link.", shared.Name),
		Color:       ui.ColorShare,
	}
	render := Render{Embeds: []ui.Embed{embed}}
	if shared.WebViewLink != "" {
		render.Components = []ui.ActionRow{ui.Row(ui.LinkButton("Open shared file", shared.WebViewLink))}
	}
	return in.Resolve(ctx, render)
}

func (r *Router) handleDownload(ctx context.Context, in *Interaction) error {
	event := in.Event()
	file, err := r.findByName(ctx, event.UserID, event.Option("filename"))
	if err != nil {
		return err
	}
	metadata, err := r.drive.GetMetadata(ctx, event.UserID, file.ID)
	if err != nil {
		return err
	}

	link := metadata.WebContentLink
	if link == "" {
		link = metadata.WebViewLink
	}
	if link == "" {
		return fmt.Errorf("%w: file has no downloadable link", boterr.ErrResourceNotFound)
	}
	embed := ui.Info("Download ready",
		fmt.Sprintf("%s **%s** (%s)", ui.FileIcon(metadata.MimeType), metadata.Name, ui.FormatFileSize(metadata.SizeBytes())))
	return in.Resolve(ctx, Render{
		Embeds:     []ui.Embed{embed},
		Components: []ui.ActionRow{ui.Row(ui.LinkButton("Download", link))},
	})
}

func (r *Router) handleDeleteRequest(ctx context.Context, in *Interaction) error {
	event := in.Event()
	file, err := r.findByName(ctx, event.UserID, event.Option("filename"))
	if err != nil {
		return err
	}

	confirmID, err := BuildActionID("delete", "confirm", file.ID)
	if err != nil {
		return err
	}
	cancelID, _ := BuildActionID("delete", "cancel")
	embed := ui.Warning("Confirm deletion",
		fmt.Sprintf("Delete **%s** permanently? This cannot be undone.", file.Name))
	return in.Resolve(ctx, Render{
		Embeds: []ui.Embed{embed},
		Components: []ui.ActionRow{ui.Row(
			ui.Button(ui.StyleDanger, "Delete", confirmID),
			ui.Button(ui.StyleSecondary, "Cancel", cancelID),
		)},
	})
}

func (r *Router) handleDeleteConfirm(ctx context.Context, in *Interaction) error {
	id, err := ParseActionID(in.Event().CustomID)
	if err != nil {
		return err
	}
	if len(id.Params) == 0 || id.Params[0] == "" {
		return fmt.Errorf("%w: file id missing from custom id", boterr.ErrUnknownAction)
	}
	if err := r.drive.Delete(ctx, in.Event().UserID, id.Params[0]); err != nil {
		return err
	}
	return in.Resolve(ctx, renderEphemeral(ui.Success("File deleted", "The file has been permanently removed.")))
}

func (r *Router) handleDeleteCancel(ctx context.Context, in *Interaction) error {
	return in.Resolve(ctx, renderEphemeral(ui.Info("Deletion cancelled", "Your file was not touched.")))
}

func (r *Router) handleStatus(ctx context.Context, in *Interaction) error {
	event := in.Event()
	if !r.credentials.IsLinked(event.UserID) {
		return in.Resolve(ctx, renderEphemeral(ui.Warning("Not linked",
			"No Google Drive account is connected. Start with `/gdrive link`.")))
	}

	account, err := r.drive.About(ctx, event.UserID)
	if err != nil {
		return err
	}
	embed := ui.Info("Drive status", "Your Google Drive is connected.")
	embed.Fields = []ui.EmbedField{
		{Name: "Account", Value: account.User.EmailAddress, Inline: true},
		{Name: "Storage", Value: formatQuota(account.StorageQuota.Usage, account.StorageQuota.Limit), Inline: true},
	}
	return in.Resolve(ctx, renderEphemeral(embed))
}

func (r *Router) handleUnlink(ctx context.Context, in *Interaction) error {
	event := in.Event()
	r.credentials.Unlink(event.UserID)
	return in.Resolve(ctx, renderEphemeral(ui.Success("Drive unlinked",
		"Your credentials were discarded. Link again anytime with `/gdrive link`.")))
}

// findByName resolves a user-supplied file name to the best match.
func (r *Router) findByName(ctx context.Context, userID, name string) (drive.File, error) {
	if strings.TrimSpace(name) == "" {
		return drive.File{}, fmt.Errorf("%w: provide a file name", boterr.ErrValidation)
	}
	matches, err := r.drive.SearchByName(ctx, userID, strings.TrimSpace(name))
	if err != nil {
		return drive.File{}, err
	}
	if len(matches) == 0 {
		return drive.File{}, fmt.Errorf("%w: no file named %q", boterr.ErrResourceNotFound, name)
	}
	return matches[0], nil
}

func formatQuota(usage, limit string) string {
	used, err := strconv.ParseInt(usage, 10, 64)
	if err != nil {
		return "unknown"
	}
	total, err := strconv.ParseInt(limit, 10, 64)
	if err != nil || total == 0 {
		return ui.FormatFileSize(used) + " used"
	}
	return fmt.Sprintf("%s of %s", ui.FormatFileSize(used), ui.FormatFileSize(total))
}
