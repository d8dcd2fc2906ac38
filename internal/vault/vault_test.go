package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hinabot/hinabot/internal/boterr"
)

type fakeExchanger struct {
	exchangeCalls int
	refreshCalls  int
	exchangeErr   error
	refreshErr    error
	tokens        Tokens
	refreshed     Tokens
}

func (f *fakeExchanger) Exchange(ctx context.Context, code string) (Tokens, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return Tokens{}, f.exchangeErr
	}
	return f.tokens, nil
}

func (f *fakeExchanger) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return Tokens{}, f.refreshErr
	}
	return f.refreshed, nil
}

func newTestVault(t *testing.T, exchanger Exchanger) *Vault {
	t.Helper()
	cipher, err := NewCipher("unit-test-key")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	return New(cipher, exchanger, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIsLinkedLifecycle(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{tokens: Tokens{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(time.Hour),
	}}
	v := newTestVault(t, exchanger)

	if v.IsLinked("u1") {
		t.Fatal("expected unlinked before store")
	}
	if err := v.Store(context.Background(), "u1", "code-1"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if !v.IsLinked("u1") {
		t.Fatal("expected linked after store")
	}
	v.Unlink("u1")
	if v.IsLinked("u1") {
		t.Fatal("expected unlinked after unlink")
	}
	v.Unlink("u1") // idempotent
}

func TestStoreWrapsAuthExchangeError(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{exchangeErr: fmt.Errorf("invalid_grant")}
	v := newTestVault(t, exchanger)

	err := v.Store(context.Background(), "u1", "stale-code")
	if !errors.Is(err, boterr.ErrAuthExchange) {
		t.Fatalf("expected ErrAuthExchange, got %v", err)
	}
	if v.IsLinked("u1") {
		t.Fatal("failed exchange must not link the user")
	}
}

func TestStoreRunsLinkHookAndSurvivesHookFailure(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{tokens: Tokens{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}}
	v := newTestVault(t, exchanger)
	hookCalls := 0
	v.SetLinkHook(func(ctx context.Context, userID string) error {
		hookCalls++
		return fmt.Errorf("provisioning down")
	})

	if err := v.Store(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}
	if hookCalls != 1 {
		t.Fatalf("expected one hook call, got %d", hookCalls)
	}
	if !v.IsLinked("u1") {
		t.Fatal("hook failure must not unlink the user")
	}
}

func TestGetRefreshesExpiredCredentialOnce(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{
		tokens: Tokens{
			AccessToken:  "old-access",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		refreshed: Tokens{
			AccessToken: "new-access",
			ExpiresAt:   time.Now().Add(time.Hour),
		},
	}
	v := newTestVault(t, exchanger)
	if err := v.Store(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}

	credential, err := v.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if credential == nil {
		t.Fatal("expected refreshed credential")
	}
	if exchanger.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", exchanger.refreshCalls)
	}
	bearer, err := v.Bearer(context.Background(), "u1")
	if err != nil {
		t.Fatalf("bearer: %v", err)
	}
	if bearer != "new-access" {
		t.Fatalf("expected refreshed access token, got %q", bearer)
	}
	if exchanger.refreshCalls != 1 {
		t.Fatalf("fresh credential must not refresh again, got %d calls", exchanger.refreshCalls)
	}
}

func TestRefreshKeepsPriorRefreshTokenWhenOmitted(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{
		tokens: Tokens{
			AccessToken:  "old-access",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		refreshed: Tokens{AccessToken: "new-access", ExpiresAt: time.Now().Add(time.Hour)},
	}
	v := newTestVault(t, exchanger)
	if err := v.Store(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}
	credential, err := v.Get(context.Background(), "u1")
	if err != nil || credential == nil {
		t.Fatalf("get: %v, %v", credential, err)
	}
	if credential.RefreshCipher == "" {
		t.Fatal("expected refresh token carried over after refresh")
	}
}

func TestFailedRefreshEvictsCredential(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{
		tokens: Tokens{
			AccessToken:  "old-access",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-time.Minute),
		},
		refreshErr: fmt.Errorf("invalid_grant"),
	}
	v := newTestVault(t, exchanger)
	if err := v.Store(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}

	credential, err := v.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get after failed refresh: %v", err)
	}
	if credential != nil {
		t.Fatal("expected nil credential after failed refresh")
	}
	if v.IsLinked("u1") {
		t.Fatal("expected eviction after failed refresh")
	}
}

func TestCorruptedCiphertextEvictsAndReportsCorruption(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{tokens: Tokens{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}}
	v := newTestVault(t, exchanger)
	unlinked := []string{}
	v.SetUnlinkHook(func(userID string) { unlinked = append(unlinked, userID) })
	if err := v.Store(context.Background(), "u1", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}

	v.mu.Lock()
	credential := v.credentials["u1"]
	credential.AccessCipher = "bm90LXJlYWwtY2lwaGVydGV4dA=="
	v.credentials["u1"] = credential
	v.mu.Unlock()

	_, err := v.Bearer(context.Background(), "u1")
	if !errors.Is(err, boterr.ErrCredentialCorrupted) {
		t.Fatalf("expected ErrCredentialCorrupted, got %v", err)
	}
	if v.IsLinked("u1") {
		t.Fatal("expected eviction after decrypt failure")
	}
	if len(unlinked) == 0 {
		t.Fatal("expected unlink hook to run on eviction")
	}
}

func TestBearerWithoutLinkReportsNotAuthenticated(t *testing.T) {
	t.Parallel()

	v := newTestVault(t, &fakeExchanger{})
	_, err := v.Bearer(context.Background(), "stranger")
	if !errors.Is(err, boterr.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestRefreshExpiringSweepsOnlyStaleCredentials(t *testing.T) {
	t.Parallel()

	exchanger := &fakeExchanger{
		tokens:    Tokens{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(-time.Minute)},
		refreshed: Tokens{AccessToken: "b", ExpiresAt: time.Now().Add(time.Hour)},
	}
	v := newTestVault(t, exchanger)
	if err := v.Store(context.Background(), "stale", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}
	exchanger.tokens = Tokens{AccessToken: "a", ExpiresAt: time.Now().Add(time.Hour)}
	if err := v.Store(context.Background(), "fresh", "code"); err != nil {
		t.Fatalf("store: %v", err)
	}

	v.RefreshExpiring(context.Background())
	if exchanger.refreshCalls != 1 {
		t.Fatalf("expected one refresh during sweep, got %d", exchanger.refreshCalls)
	}
}
