package config

import (
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("HINABOT_DISCORD_TOKEN", "bot-token")
	t.Setenv("HINABOT_DISCORD_APPLICATION_ID", "app-1")
	t.Setenv("HINABOT_GOOGLE_CLIENT_ID", "client-1")
	t.Setenv("HINABOT_GOOGLE_CLIENT_SECRET", "secret-1")
	t.Setenv("HINABOT_SEARCH_API_KEY", "search-key")
	t.Setenv("HINABOT_SEARCH_ENGINE_ID", "engine-1")
	t.Setenv("HINABOT_ENCRYPTION_KEY", "a-real-key")
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HINABOT_DISCORD_API_BASE", "")
	t.Setenv("HINABOT_DISCORD_GATEWAY_URL", "")
	t.Setenv("HINABOT_UPLOAD_MAX_BYTES", "")
	t.Setenv("HINABOT_COOLDOWN_SECONDS", "")
	t.Setenv("HINABOT_COMMAND_SYNC_ENABLED", "")

	cfg := FromEnv()
	if cfg.DiscordAPI != "https://discord.com/api/v10" {
		t.Fatalf("unexpected discord api base: %s", cfg.DiscordAPI)
	}
	if cfg.UploadMaxBytes != 8*1024*1024 {
		t.Fatalf("expected 8 MiB upload ceiling, got %d", cfg.UploadMaxBytes)
	}
	if cfg.CooldownSeconds != 3 {
		t.Fatalf("expected 3s default cooldown, got %d", cfg.CooldownSeconds)
	}
	if !cfg.CommandSyncEnabled {
		t.Fatal("expected command sync enabled by default")
	}
}

func TestValidateListsAllMissingVariables(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, name := range []string{"HINABOT_DISCORD_TOKEN", "HINABOT_SEARCH_ENGINE_ID"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error, got %v", name, err)
		}
	}
}

func TestValidateRefusesPlaceholderEncryptionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("HINABOT_ENCRYPTION_KEY", InsecurePlaceholderKey)

	err := FromEnv().Validate()
	if err == nil {
		t.Fatal("expected placeholder key to be refused")
	}
	if !strings.Contains(err.Error(), "insecure placeholder") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRefusesMissingEncryptionKey(t *testing.T) {
	setRequired(t)
	t.Setenv("HINABOT_ENCRYPTION_KEY", "")

	if err := FromEnv().Validate(); err == nil {
		t.Fatal("expected missing key to be refused")
	}
}

func TestValidatePassesWithFullEnvironment(t *testing.T) {
	setRequired(t)
	if err := FromEnv().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
