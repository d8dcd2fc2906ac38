package cli

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := NewRoot(slog.New(slog.NewTextHandler(io.Discard, nil)))
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestCheckConfigFailsOnEmptyEnvironment(t *testing.T) {
	for _, name := range []string{
		"HINABOT_DISCORD_TOKEN", "HINABOT_DISCORD_APPLICATION_ID",
		"HINABOT_GOOGLE_CLIENT_ID", "HINABOT_GOOGLE_CLIENT_SECRET",
		"HINABOT_SEARCH_API_KEY", "HINABOT_SEARCH_ENGINE_ID",
		"HINABOT_ENCRYPTION_KEY",
	} {
		t.Setenv(name, "")
	}

	root := NewRoot(slog.New(slog.NewTextHandler(io.Discard, nil)))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"check-config"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected validation failure with empty environment")
	}
}
