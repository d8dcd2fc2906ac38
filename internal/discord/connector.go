// Package discord runs the raw gateway websocket session and the REST
// calls behind interaction responses and slash command registration.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hinabot/hinabot/internal/router"
)

const discordIntentGuilds = 1 << 0

// Dispatcher consumes normalized interactions. The router implements it.
type Dispatcher interface {
	HandleEvent(ctx context.Context, event router.Event, responder router.Responder)
}

type Connector struct {
	token      string
	appID      string
	apiBase    string
	gatewayURL string
	dispatcher Dispatcher
	httpClient *http.Client
	logger     *slog.Logger
	botUserID  string
}

func New(token, appID, apiBase, gatewayURL string, dispatcher Dispatcher, logger *slog.Logger) *Connector {
	if strings.TrimSpace(apiBase) == "" {
		apiBase = "https://discord.com/api/v10"
	}
	if strings.TrimSpace(gatewayURL) == "" {
		gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"
	}
	return &Connector{
		token:      strings.TrimSpace(token),
		appID:      strings.TrimSpace(appID),
		apiBase:    strings.TrimRight(strings.TrimSpace(apiBase), "/"),
		gatewayURL: strings.TrimSpace(gatewayURL),
		dispatcher: dispatcher,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		logger:     logger,
	}
}

func (c *Connector) Name() string {
	return "discord"
}

// Start runs gateway sessions until the context ends, reconnecting with
// a short backoff when a session drops.
func (c *Connector) Start(ctx context.Context) error {
	if c.token == "" {
		c.logger.Info("connector disabled, token missing")
		<-ctx.Done()
		return nil
	}

	c.logger.Info("connector started", "mode", "gateway")
	for {
		if ctx.Err() != nil {
			c.logger.Info("connector stopped")
			return nil
		}
		if err := c.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				c.logger.Info("connector stopped")
				return nil
			}
			c.logger.Error("discord session ended, reconnecting", "error", err)
			select {
			case <-ctx.Done():
				c.logger.Info("connector stopped")
				return nil
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func (c *Connector) runSession(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("dial discord gateway: %w", err)
	}
	defer conn.Close()

	var (
		writeMu      sync.Mutex
		sequence     int64
		heartbeatSec = 30 * time.Second
	)

	readHelloDone := false
	for !readHelloDone {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read hello: %w", err)
		}
		var envelope gatewayEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("decode hello payload: %w", err)
		}
		if envelope.Op != opHello {
			continue
		}
		var hello gatewayHello
		if err := json.Unmarshal(envelope.D, &hello); err != nil {
			return fmt.Errorf("decode hello body: %w", err)
		}
		heartbeatSec = time.Duration(hello.HeartbeatIntervalMS) * time.Millisecond
		readHelloDone = true
	}

	if err := c.sendIdentify(conn, &writeMu); err != nil {
		return err
	}

	heartbeatCtx, cancelHeartbeat := context.WithCancel(ctx)
	defer cancelHeartbeat()
	go c.heartbeatLoop(heartbeatCtx, conn, &writeMu, &sequence, heartbeatSec)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read gateway message: %w", err)
		}

		var envelope gatewayEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			c.logger.Error("decode gateway envelope failed", "error", err)
			continue
		}
		if envelope.S != nil {
			sequence = *envelope.S
		}

		switch envelope.Op {
		case opDispatch:
			if envelope.T == "READY" {
				var ready gatewayReady
				if err := json.Unmarshal(envelope.D, &ready); err == nil {
					c.botUserID = strings.TrimSpace(ready.User.ID)
					c.logger.Info("gateway ready", "bot_user_id", c.botUserID)
				}
			}
			if envelope.T == "INTERACTION_CREATE" {
				var interaction wireInteraction
				if err := json.Unmarshal(envelope.D, &interaction); err != nil {
					c.logger.Error("decode interaction failed", "error", err)
					continue
				}
				c.handleInteraction(ctx, interaction)
			}
		case opHeartbeat:
			if err := c.sendHeartbeat(conn, &writeMu, sequence); err != nil {
				return err
			}
		case opReconnect:
			return fmt.Errorf("gateway requested reconnect")
		case opInvalidSession:
			return fmt.Errorf("gateway invalid session")
		}
	}
}

func (c *Connector) heartbeatLoop(ctx context.Context, conn *websocket.Conn, writeMu *sync.Mutex, seq *int64, interval time.Duration) {
	if interval < time.Second {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(conn, writeMu, *seq); err != nil {
				c.logger.Error("heartbeat failed", "error", err)
				return
			}
		}
	}
}

func (c *Connector) sendIdentify(conn *websocket.Conn, writeMu *sync.Mutex) error {
	payload := map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token":   c.token,
			"intents": discordIntentGuilds,
			"properties": map[string]string{
				"os":      "linux",
				"browser": "hinabot",
				"device":  "hinabot",
			},
		},
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send identify: %w", err)
	}
	return nil
}

func (c *Connector) sendHeartbeat(conn *websocket.Conn, writeMu *sync.Mutex, seq int64) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	payload := map[string]any{
		"op": opHeartbeat,
		"d":  seq,
	}
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	return nil
}

// handleInteraction normalizes one interaction and hands it to the
// dispatcher on its own goroutine so a slow handler never stalls the
// gateway read loop.
func (c *Connector) handleInteraction(ctx context.Context, interaction wireInteraction) {
	if interaction.Type == interactionTypePing {
		return
	}
	event, ok := normalizeInteraction(interaction)
	if !ok {
		c.logger.Warn("unsupported interaction type", "type", interaction.Type)
		return
	}
	responder := &interactionResponder{
		connector:   c,
		interaction: interaction,
	}
	go c.dispatcher.HandleEvent(ctx, event, responder)
}

// normalizeInteraction flattens the wire payload into a router event.
// Subcommands collapse into Command/Sub; attachment options resolve
// through data.resolved.
func normalizeInteraction(interaction wireInteraction) (router.Event, bool) {
	author := interaction.author()
	switch interaction.Type {
	case interactionTypeCommand:
		event := router.Event{
			Kind:     router.KindCommand,
			Command:  interaction.Data.Name,
			Options:  map[string]string{},
			UserID:   author.ID,
			Username: author.Username,
		}
		options := interaction.Data.Options
		if len(options) == 1 && options[0].Type == optionTypeSubcommand {
			event.Sub = options[0].Name
			options = options[0].Options
		}
		for _, option := range options {
			value := optionString(option.Value)
			if option.Type == optionTypeAttachment {
				if resolved, ok := interaction.Data.Resolved.Attachments[value]; ok {
					event.Attachment = &router.Attachment{
						ID:          resolved.ID,
						Filename:    resolved.Filename,
						ContentType: resolved.ContentType,
						URL:         resolved.URL,
						Size:        resolved.Size,
					}
				}
				continue
			}
			event.Options[option.Name] = value
		}
		return event, true
	case interactionTypeComponent:
		kind := router.KindButton
		if interaction.Data.ComponentType == componentTypeSelectMenu {
			kind = router.KindSelect
		}
		return router.Event{
			Kind:     kind,
			CustomID: interaction.Data.CustomID,
			Values:   interaction.Data.Values,
			UserID:   author.ID,
			Username: author.Username,
		}, true
	default:
		return router.Event{}, false
	}
}

// optionString renders an option value regardless of its JSON type.
func optionString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return strconv.FormatFloat(asNumber, 'f', -1, 64)
	}
	var asBool bool
	if err := json.Unmarshal(raw, &asBool); err == nil {
		return strconv.FormatBool(asBool)
	}
	return strings.Trim(string(raw), `"`)
}
