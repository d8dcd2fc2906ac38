package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hinabot/hinabot/internal/router"
	"github.com/hinabot/hinabot/internal/ui"
)

// responseMessage is the REST shape of an interaction response body.
type responseMessage struct {
	Content    string         `json:"content,omitempty"`
	Embeds     []ui.Embed     `json:"embeds,omitempty"`
	Components []ui.ActionRow `json:"components,omitempty"`
	Flags      int            `json:"flags,omitempty"`
}

func messageFromRender(render router.Render) responseMessage {
	message := responseMessage{
		Content:    render.Content,
		Embeds:     render.Embeds,
		Components: render.Components,
	}
	if render.Ephemeral {
		message.Flags = flagEphemeral
	}
	return message
}

// interactionResponder delivers one interaction's responses over the
// callback and webhook endpoints.
type interactionResponder struct {
	connector   *Connector
	interaction wireInteraction
}

func (r *interactionResponder) Defer(ctx context.Context, ephemeral bool) error {
	callbackType := callbackDeferredReply
	if r.interaction.Type == interactionTypeComponent {
		callbackType = callbackDeferredEdit
	}
	body := map[string]any{"type": callbackType}
	if ephemeral && callbackType == callbackDeferredReply {
		body["data"] = map[string]any{"flags": flagEphemeral}
	}
	endpoint := fmt.Sprintf("%s/interactions/%s/%s/callback",
		r.connector.apiBase, r.interaction.ID, r.interaction.Token)
	return r.connector.postJSON(ctx, endpoint, body)
}

func (r *interactionResponder) Reply(ctx context.Context, render router.Render) error {
	body := map[string]any{
		"type": callbackReply,
		"data": messageFromRender(render),
	}
	endpoint := fmt.Sprintf("%s/interactions/%s/%s/callback",
		r.connector.apiBase, r.interaction.ID, r.interaction.Token)
	return r.connector.postJSON(ctx, endpoint, body)
}

func (r *interactionResponder) Edit(ctx context.Context, render router.Render) error {
	endpoint := fmt.Sprintf("%s/webhooks/%s/%s/messages/@original",
		r.connector.apiBase, r.connector.appID, r.interaction.Token)
	return r.connector.patchJSON(ctx, endpoint, messageFromRender(render))
}

// Fetch downloads an attachment from Discord's CDN.
func (c *Connector) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("attachment download failed with status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (c *Connector) postJSON(ctx context.Context, endpoint string, body any) error {
	return c.sendJSON(ctx, http.MethodPost, endpoint, body)
}

func (c *Connector) patchJSON(ctx context.Context, endpoint string, body any) error {
	return c.sendJSON(ctx, http.MethodPatch, endpoint, body)
}

func (c *Connector) sendJSON(ctx context.Context, method, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("User-Agent", "hinabot/0.1")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("discord request failed: method=%s status=%d body=%s", method, res.StatusCode, string(bodyBytes))
	}
	return nil
}
