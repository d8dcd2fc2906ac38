// Package router turns normalized Discord interactions into bot
// behavior: cooldown gating, the acknowledge/resolve lifecycle, action
// dispatch, and the error taxonomy rendered back to the user.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hinabot/hinabot/internal/boterr"
	"github.com/hinabot/hinabot/internal/cooldown"
	"github.com/hinabot/hinabot/internal/drive"
	"github.com/hinabot/hinabot/internal/search"
	"github.com/hinabot/hinabot/internal/ui"
)

const searchCooldown = 5 * time.Second

// DriveService is the slice of the Drive adapter handlers use.
type DriveService interface {
	ListChildren(ctx context.Context, userID, folderID string) (drive.Listing, error)
	SearchByName(ctx context.Context, userID, name string) ([]drive.File, error)
	Upload(ctx context.Context, userID, parentID, name, mimeType string, content []byte) (drive.File, error)
	Delete(ctx context.Context, userID, fileID string) error
	CreatePublicPermission(ctx context.Context, userID, fileID string) error
	GetMetadata(ctx context.Context, userID, fileID string) (drive.File, error)
	About(ctx context.Context, userID string) (drive.Account, error)
}

// Searcher runs one web search.
type Searcher interface {
	Run(ctx context.Context, query, searchType string) (search.Results, error)
}

// CredentialStore is the vault surface the handlers need.
type CredentialStore interface {
	Store(ctx context.Context, userID, code string) error
	IsLinked(userID string) bool
	Unlink(userID string)
	Count() int
}

// FolderProvider resolves a user's provisioned folder map.
type FolderProvider interface {
	Folders(ctx context.Context, userID string) (map[string]string, error)
}

// AuthURLBuilder produces the OAuth consent URL for a linking user.
type AuthURLBuilder interface {
	AuthCodeURL(state string) string
}

// AttachmentFetcher downloads an attachment's bytes from Discord's CDN.
type AttachmentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type gate interface {
	CheckAndRecord(command, userID string, window time.Duration) (bool, time.Duration)
}

type handlerFunc func(ctx context.Context, in *Interaction) error

type route struct {
	handler   handlerFunc
	window    time.Duration
	ephemeral bool
}

// Router dispatches events to handlers and owns the response contract:
// every event ends resolved or failed exactly once.
type Router struct {
	drive       DriveService
	searcher    Searcher
	credentials CredentialStore
	folders     FolderProvider
	authURL     AuthURLBuilder
	attachments AttachmentFetcher
	cooldowns   gate
	logger      *slog.Logger

	uploadMaxBytes  int64
	defaultCooldown time.Duration
	startedAt       time.Time

	commands   map[string]route
	components map[string]route
}

type Deps struct {
	Drive           DriveService
	Searcher        Searcher
	Credentials     CredentialStore
	Folders         FolderProvider
	AuthURL         AuthURLBuilder
	Attachments     AttachmentFetcher
	Cooldowns       *cooldown.Gate
	UploadMaxBytes  int64
	DefaultCooldown time.Duration
	Logger          *slog.Logger
}

func New(deps Deps) *Router {
	if deps.DefaultCooldown <= 0 {
		deps.DefaultCooldown = cooldown.DefaultWindow
	}
	r := &Router{
		drive:           deps.Drive,
		searcher:        deps.Searcher,
		credentials:     deps.Credentials,
		folders:         deps.Folders,
		authURL:         deps.AuthURL,
		attachments:     deps.Attachments,
		cooldowns:       deps.Cooldowns,
		logger:          deps.Logger,
		uploadMaxBytes:  deps.UploadMaxBytes,
		defaultCooldown: deps.DefaultCooldown,
		startedAt:       time.Now().UTC(),
	}
	r.commands = map[string]route{
		"ping":            {handler: r.handlePing},
		"help":            {handler: r.handleHelp, ephemeral: true},
		"stats":           {handler: r.handleStats},
		"search":          {handler: r.handleSearch, window: searchCooldown},
		"gdrive:link":     {handler: r.handleLink, ephemeral: true},
		"gdrive:verify":   {handler: r.handleVerify, ephemeral: true},
		"gdrive:upload":   {handler: r.handleUpload},
		"gdrive:list":     {handler: r.handleList},
		"gdrive:share":    {handler: r.handleShare},
		"gdrive:download": {handler: r.handleDownload},
		"gdrive:delete":   {handler: r.handleDeleteRequest},
		"gdrive:status":   {handler: r.handleStatus, ephemeral: true},
		"gdrive:unlink":   {handler: r.handleUnlink, ephemeral: true},
		"gdrive:help":     {handler: r.handleHelp, ephemeral: true},
	}
	r.components = map[string]route{
		"delete:confirm": {handler: r.handleDeleteConfirm},
		"delete:cancel":  {handler: r.handleDeleteCancel},
		"folder:open":    {handler: r.handleFolderOpen},
		"folder:root":    {handler: r.handleFolderRoot},
		"search:type":    {handler: r.handleSearchType},
	}
	return r
}

// SetAttachmentFetcher injects the fetcher after construction. The
// transport needs the router first, so this breaks the cycle.
func (r *Router) SetAttachmentFetcher(fetcher AttachmentFetcher) {
	r.attachments = fetcher
}

// HandleEvent runs one interaction end to end. It never returns an
// error; failures become user-visible error renders.
func (r *Router) HandleEvent(ctx context.Context, event Event, responder Responder) {
	in := newInteraction(event, responder, r.logger)
	traceID := uuid.NewString()

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Error("handler panicked",
				"panic", recovered, "trace_id", traceID, "user_id", event.UserID)
			in.Fail(ctx, renderEphemeral(ui.Error("Something went wrong",
				"An unexpected error occurred. Please try again.")))
		}
	}()

	matched, key := r.lookup(event)
	if matched.handler == nil {
		r.logger.Warn("unrecognized interaction",
			"kind", event.Kind.String(), "command", event.Command, "custom_id", event.CustomID, "trace_id", traceID)
		in.Fail(ctx, renderEphemeral(ui.Warning("Unrecognized interaction",
			"This action is not supported. It may come from an outdated message.")))
		return
	}

	if event.Kind == KindCommand {
		window := matched.window
		if window <= 0 {
			window = r.defaultCooldown
		}
		if allowed, remaining := r.cooldowns.CheckAndRecord(key, event.UserID, window); !allowed {
			in.Fail(ctx, renderEphemeral(ui.Warning("Slow down",
				fmt.Sprintf("You can use this command again in %.1f seconds.", remaining.Seconds()))))
			return
		}
	}

	if err := in.Acknowledge(ctx, matched.ephemeral || event.Kind != KindCommand); err != nil {
		r.logger.Error("acknowledge failed", "error", err, "trace_id", traceID, "user_id", event.UserID)
		return
	}

	if err := matched.handler(ctx, in); err != nil {
		r.logger.Error("handler failed",
			"error", err, "key", key, "trace_id", traceID, "user_id", event.UserID)
		in.Fail(ctx, r.renderError(err))
	}
}

// lookup resolves the route for an event: commands key on
// command[:sub], components on the custom id's action[:sub] with a
// bare-action fallback.
func (r *Router) lookup(event Event) (route, string) {
	if event.Kind == KindCommand {
		key := event.Command
		if event.Sub != "" {
			key = event.Command + Delimiter + event.Sub
		}
		return r.commands[key], key
	}

	id, err := ParseActionID(event.CustomID)
	if err != nil {
		return route{}, event.CustomID
	}
	key := id.Action + Delimiter + id.Sub
	if matched, ok := r.components[key]; ok {
		return matched, key
	}
	return r.components[id.Action], id.Action
}

// renderError maps the error taxonomy to a user-facing embed. Wrapped
// context stays in the logs, not the user's screen.
func (r *Router) renderError(err error) Render {
	switch {
	case errors.Is(err, boterr.ErrNotAuthenticated):
		return renderEphemeral(ui.Warning("Not linked",
			"Link your Google Drive first with `/gdrive link`."))
	case errors.Is(err, boterr.ErrCredentialCorrupted):
		return renderEphemeral(ui.Error("Credentials reset",
			"Your stored credentials could not be read and were removed. Please link again with `/gdrive link`."))
	case errors.Is(err, boterr.ErrAuthExchange):
		return renderEphemeral(ui.Error("Verification failed",
			"Google rejected the authorization code. Request a fresh link with `/gdrive link` and try again."))
	case errors.Is(err, boterr.ErrValidation):
		return renderEphemeral(ui.Warning("Invalid input", userMessage(err)))
	case errors.Is(err, boterr.ErrResourceNotFound):
		return renderEphemeral(ui.Error("Not found",
			"That file or folder does not exist or is out of reach."))
	case errors.Is(err, boterr.ErrRemoteQuota):
		return renderEphemeral(ui.Warning("Rate limited",
			"The upstream service is throttling requests. Please try again in a moment."))
	case errors.Is(err, boterr.ErrUnknownAction):
		return renderEphemeral(ui.Warning("Unrecognized interaction",
			"This action is not supported. It may come from an outdated message."))
	default:
		return renderEphemeral(ui.Error("Something went wrong",
			"An unexpected error occurred. Please try again."))
	}
}

// userMessage strips the sentinel prefix so validation errors read as
// plain sentences.
func userMessage(err error) string {
	message := err.Error()
	if trimmed, ok := strings.CutPrefix(message, boterr.ErrValidation.Error()+": "); ok {
		return trimmed
	}
	return message
}
