package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// InsecurePlaceholderKey is the historical default encryption key. A
// configuration carrying it is refused outright.
const InsecurePlaceholderKey = "default-key-please-change-in-production"

type Config struct {
	Environment string

	DiscordToken              string
	DiscordApplicationID      string
	DiscordAPI                string
	DiscordWSURL              string
	DiscordCommandGuildIDsCSV string
	CommandSyncEnabled        bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	DriveAPI           string
	DriveUploadAPI     string

	SearchAPIKey   string
	SearchEngineID string
	SearchAPI      string

	EncryptionKey string

	UploadMaxBytes     int
	CooldownSeconds    int
	MaintenanceEnabled bool
}

func FromEnv() Config {
	return Config{
		Environment:               stringOrDefault("HINABOT_ENV", "development"),
		DiscordToken:              strings.TrimSpace(os.Getenv("HINABOT_DISCORD_TOKEN")),
		DiscordApplicationID:      strings.TrimSpace(os.Getenv("HINABOT_DISCORD_APPLICATION_ID")),
		DiscordAPI:                stringOrDefault("HINABOT_DISCORD_API_BASE", "https://discord.com/api/v10"),
		DiscordWSURL:              stringOrDefault("HINABOT_DISCORD_GATEWAY_URL", "wss://gateway.discord.gg/?v=10&encoding=json"),
		DiscordCommandGuildIDsCSV: strings.TrimSpace(os.Getenv("HINABOT_DISCORD_COMMAND_GUILD_IDS")),
		CommandSyncEnabled:        boolOrDefault("HINABOT_COMMAND_SYNC_ENABLED", true),
		GoogleClientID:            strings.TrimSpace(os.Getenv("HINABOT_GOOGLE_CLIENT_ID")),
		GoogleClientSecret:        strings.TrimSpace(os.Getenv("HINABOT_GOOGLE_CLIENT_SECRET")),
		GoogleRedirectURI:         stringOrDefault("HINABOT_GOOGLE_REDIRECT_URI", "urn:ietf:wg:oauth:2.0:oob"),
		DriveAPI:                  stringOrDefault("HINABOT_DRIVE_API_BASE", "https://www.googleapis.com/drive/v3"),
		DriveUploadAPI:            stringOrDefault("HINABOT_DRIVE_UPLOAD_API_BASE", "https://www.googleapis.com/upload/drive/v3"),
		SearchAPIKey:              strings.TrimSpace(os.Getenv("HINABOT_SEARCH_API_KEY")),
		SearchEngineID:            strings.TrimSpace(os.Getenv("HINABOT_SEARCH_ENGINE_ID")),
		SearchAPI:                 stringOrDefault("HINABOT_SEARCH_API_BASE", "https://www.googleapis.com/customsearch/v1"),
		EncryptionKey:             strings.TrimSpace(os.Getenv("HINABOT_ENCRYPTION_KEY")),
		UploadMaxBytes:            intOrDefault("HINABOT_UPLOAD_MAX_BYTES", 8*1024*1024),
		CooldownSeconds:           intOrDefault("HINABOT_COOLDOWN_SECONDS", 3),
		MaintenanceEnabled:        boolOrDefault("HINABOT_MAINTENANCE_ENABLED", true),
	}
}

// Validate reports every missing required variable at once so the operator
// can fix the environment in a single pass. An unset or placeholder
// encryption key is refused, never silently defaulted.
func (c Config) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"HINABOT_DISCORD_TOKEN", c.DiscordToken},
		{"HINABOT_DISCORD_APPLICATION_ID", c.DiscordApplicationID},
		{"HINABOT_GOOGLE_CLIENT_ID", c.GoogleClientID},
		{"HINABOT_GOOGLE_CLIENT_SECRET", c.GoogleClientSecret},
		{"HINABOT_SEARCH_API_KEY", c.SearchAPIKey},
		{"HINABOT_SEARCH_ENGINE_ID", c.SearchEngineID},
	}
	missing := []string{}
	for _, entry := range required {
		if strings.TrimSpace(entry.value) == "" {
			missing = append(missing, entry.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("HINABOT_ENCRYPTION_KEY is required")
	}
	if c.EncryptionKey == InsecurePlaceholderKey {
		return fmt.Errorf("HINABOT_ENCRYPTION_KEY is set to the insecure placeholder, refusing to start")
	}
	return nil
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
