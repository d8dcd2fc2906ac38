package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hinabot/hinabot/internal/boterr"
)

// Tokens is a decrypted token pair as returned by the identity provider.
// Instances are short-lived; the vault never holds one past the call that
// produced it.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Credential is the at-rest form. Both token fields are ciphertext.
type Credential struct {
	AccessCipher  string
	RefreshCipher string
	ExpiresAt     time.Time
}

func (c Credential) expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}

// Exchanger talks to the identity provider.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Vault keeps encrypted per-user credentials in memory. Durability is an
// explicit non-goal; a restart unlinks everyone.
type Vault struct {
	cipher    *Cipher
	exchanger Exchanger
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	credentials map[string]Credential

	linkHook   func(ctx context.Context, userID string) error
	unlinkHook func(userID string)
}

func New(cipher *Cipher, exchanger Exchanger, logger *slog.Logger) *Vault {
	return &Vault{
		cipher:      cipher,
		exchanger:   exchanger,
		logger:      logger,
		now:         time.Now,
		credentials: map[string]Credential{},
	}
}

// SetLinkHook registers a routine run after a successful Store, typically
// resource provisioning. Hook failure is logged, not fatal: provisioning is
// retried lazily on first authenticated use.
func (v *Vault) SetLinkHook(hook func(ctx context.Context, userID string) error) {
	v.linkHook = hook
}

// SetUnlinkHook registers cache teardown run on Unlink and on eviction.
func (v *Vault) SetUnlinkHook(hook func(userID string)) {
	v.unlinkHook = hook
}

// Store exchanges a one-time authorization code and saves the encrypted
// token pair under userID.
func (v *Vault) Store(ctx context.Context, userID, code string) error {
	tokens, err := v.exchanger.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("%w: %v", boterr.ErrAuthExchange, err)
	}
	if err := v.save(userID, tokens); err != nil {
		return err
	}
	v.logger.Info("credential stored", "user_id", userID)
	if v.linkHook != nil {
		if err := v.linkHook(ctx, userID); err != nil {
			v.logger.Error("post-link provisioning failed", "error", err, "user_id", userID)
		}
	}
	return nil
}

// Get returns the stored credential, transparently refreshing an expired
// one. A failed refresh evicts and returns nil; a decrypt failure evicts
// and reports ErrCredentialCorrupted.
func (v *Vault) Get(ctx context.Context, userID string) (*Credential, error) {
	v.mu.Lock()
	credential, ok := v.credentials[userID]
	v.mu.Unlock()
	if !ok {
		return nil, nil
	}
	if !credential.expired(v.now()) {
		return &credential, nil
	}
	refreshed, err := v.refresh(ctx, userID, credential)
	if err != nil {
		if errors.Is(err, boterr.ErrCredentialCorrupted) {
			return nil, err
		}
		v.logger.Error("credential refresh failed, evicting", "error", err, "user_id", userID)
		v.evict(userID)
		return nil, nil
	}
	return refreshed, nil
}

// Bearer decrypts the access token for one immediate call. Callers must not
// retain the returned value.
func (v *Vault) Bearer(ctx context.Context, userID string) (string, error) {
	credential, err := v.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", boterr.ErrNotAuthenticated
	}
	access, err := v.cipher.Decrypt(credential.AccessCipher)
	if err != nil {
		v.evict(userID)
		return "", err
	}
	return access, nil
}

// Unlink removes the credential and runs cache teardown. Unlinking an
// unknown user is a no-op.
func (v *Vault) Unlink(userID string) {
	v.mu.Lock()
	_, existed := v.credentials[userID]
	delete(v.credentials, userID)
	v.mu.Unlock()
	if existed {
		v.logger.Info("credential unlinked", "user_id", userID)
	}
	if v.unlinkHook != nil {
		v.unlinkHook(userID)
	}
}

func (v *Vault) IsLinked(userID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.credentials[userID]
	return ok
}

// Count reports how many users currently hold linked credentials.
func (v *Vault) Count() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.credentials)
}

// RefreshExpiring proactively refreshes credentials past their expiry.
// Used by the maintenance sweep; user-facing paths refresh on demand.
func (v *Vault) RefreshExpiring(ctx context.Context) {
	v.mu.Lock()
	stale := []string{}
	now := v.now()
	for userID, credential := range v.credentials {
		if credential.expired(now) {
			stale = append(stale, userID)
		}
	}
	v.mu.Unlock()
	for _, userID := range stale {
		if _, err := v.Get(ctx, userID); err != nil {
			v.logger.Error("maintenance refresh failed", "error", err, "user_id", userID)
		}
	}
}

func (v *Vault) refresh(ctx context.Context, userID string, credential Credential) (*Credential, error) {
	if credential.RefreshCipher == "" {
		return nil, fmt.Errorf("no refresh token stored")
	}
	refreshToken, err := v.cipher.Decrypt(credential.RefreshCipher)
	if err != nil {
		v.evict(userID)
		return nil, err
	}
	tokens, err := v.exchanger.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh tokens: %w", err)
	}
	if tokens.RefreshToken == "" {
		// Google omits the refresh token on refresh responses.
		tokens.RefreshToken = refreshToken
	}
	if err := v.save(userID, tokens); err != nil {
		return nil, err
	}
	v.mu.Lock()
	saved := v.credentials[userID]
	v.mu.Unlock()
	v.logger.Info("credential refreshed", "user_id", userID)
	return &saved, nil
}

func (v *Vault) save(userID string, tokens Tokens) error {
	accessCipher, err := v.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshCipher := ""
	if tokens.RefreshToken != "" {
		refreshCipher, err = v.cipher.Encrypt(tokens.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
	}
	v.mu.Lock()
	v.credentials[userID] = Credential{
		AccessCipher:  accessCipher,
		RefreshCipher: refreshCipher,
		ExpiresAt:     tokens.ExpiresAt,
	}
	v.mu.Unlock()
	return nil
}

func (v *Vault) evict(userID string) {
	v.mu.Lock()
	delete(v.credentials, userID)
	v.mu.Unlock()
	if v.unlinkHook != nil {
		v.unlinkHook(userID)
	}
}
