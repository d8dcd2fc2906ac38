// Package app assembles the bot: configuration in, wired components
// out, one Run call supervising everything.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hinabot/hinabot/internal/config"
	"github.com/hinabot/hinabot/internal/cooldown"
	"github.com/hinabot/hinabot/internal/discord"
	"github.com/hinabot/hinabot/internal/drive"
	"github.com/hinabot/hinabot/internal/googleauth"
	"github.com/hinabot/hinabot/internal/router"
	"github.com/hinabot/hinabot/internal/scheduler"
	"github.com/hinabot/hinabot/internal/search"
	"github.com/hinabot/hinabot/internal/session"
	"github.com/hinabot/hinabot/internal/vault"
)

type Runtime struct {
	cfg       config.Config
	logger    *slog.Logger
	connector *discord.Connector
	scheduler *scheduler.Service
}

// New wires every component. Credential changes fan out to the session
// state through the vault hooks: linking provisions the folder tree,
// unlinking forgets it.
func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	cipher, err := vault.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("initialize cipher: %w", err)
	}

	auth := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	credentials := vault.New(cipher, auth, logger.With("component", "vault"))

	driveClient := drive.NewClient(cfg.DriveAPI, cfg.DriveUploadAPI, credentials, logger.With("component", "drive"))
	sessions := session.NewState(driveClient, logger.With("component", "session"))

	credentials.SetLinkHook(func(ctx context.Context, userID string) error {
		_, err := sessions.Provision(ctx, userID)
		return err
	})
	credentials.SetUnlinkHook(sessions.Forget)

	searcher := search.NewClient(cfg.SearchAPI, cfg.SearchAPIKey, cfg.SearchEngineID, logger.With("component", "search"))

	dispatcher := router.New(router.Deps{
		Drive:           driveClient,
		Searcher:        searcher,
		Credentials:     credentials,
		Folders:         sessions,
		AuthURL:         auth,
		Cooldowns:       cooldown.NewGate(),
		UploadMaxBytes:  int64(cfg.UploadMaxBytes),
		DefaultCooldown: time.Duration(cfg.CooldownSeconds) * time.Second,
		Logger:          logger.With("component", "router"),
	})

	connector := discord.New(
		cfg.DiscordToken,
		cfg.DiscordApplicationID,
		cfg.DiscordAPI,
		cfg.DiscordWSURL,
		dispatcher,
		logger.With("component", "discord"),
	)
	dispatcher.SetAttachmentFetcher(connector)

	var maintenance *scheduler.Service
	if cfg.MaintenanceEnabled {
		maintenance = scheduler.New(credentials, logger.With("component", "scheduler"))
	}

	return &Runtime{
		cfg:       cfg,
		logger:    logger,
		connector: connector,
		scheduler: maintenance,
	}, nil
}

// Run starts the gateway session and the maintenance scheduler and
// blocks until the context ends or a component fails.
func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("hinabot runtime starting", "environment", r.cfg.Environment)

	if r.cfg.CommandSyncEnabled {
		syncCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := r.connector.SyncCommands(syncCtx, commandGuildIDs(r.cfg.DiscordCommandGuildIDsCSV)); err != nil {
			r.logger.Error("command sync failed", "error", err)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.connector.Start(groupCtx)
	})
	if r.scheduler != nil {
		group.Go(func() error {
			return r.scheduler.Start(groupCtx)
		})
	}
	return group.Wait()
}

func commandGuildIDs(csv string) []string {
	ids := []string{}
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
