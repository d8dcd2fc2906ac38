package googleauth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/hinabot/hinabot/internal/vault"
)

const driveFileScope = "https://www.googleapis.com/auth/drive.file"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

// Client wraps the Google OAuth endpoints for the drive.file scope. It is
// the vault's Exchanger.
type Client struct {
	config oauth2.Config
}

func New(clientID, clientSecret, redirectURI string) *Client {
	return &Client{config: oauth2.Config{
		ClientID:     strings.TrimSpace(clientID),
		ClientSecret: strings.TrimSpace(clientSecret),
		RedirectURL:  strings.TrimSpace(redirectURI),
		Endpoint:     googleEndpoint,
		Scopes:       []string{driveFileScope},
	}}
}

// AuthCodeURL builds the consent URL. Offline access yields a refresh
// token; the forced account picker avoids silently reusing a stale Google
// session.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (c *Client) Exchange(ctx context.Context, code string) (vault.Tokens, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return vault.Tokens{}, fmt.Errorf("exchange authorization code: %w", err)
	}
	return fromOAuth2(token), nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (vault.Tokens, error) {
	source := c.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return vault.Tokens{}, fmt.Errorf("refresh access token: %w", err)
	}
	return fromOAuth2(token), nil
}

func fromOAuth2(token *oauth2.Token) vault.Tokens {
	return vault.Tokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
}
