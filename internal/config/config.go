package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/goccy/go-yaml"
)

// Vault backends.
const (
	BackendDir       = "dir"
	BackendPathstore = "pathstore"
)

// SaveLocation selects where frozen files are written.
type SaveLocation string

const (
	SameDirectory   SaveLocation = "same-directory"
	CustomDirectory SaveLocation = "custom-directory"
)

// Settings are the user-facing freeze options. The keys match the settings
// file written by the editor plugin.
type Settings struct {
	SaveLocation    SaveLocation `yaml:"saveLocation" json:"saveLocation"`
	CustomDirectory string       `yaml:"customDirectory" json:"customDirectory"`
	OpenFreezeFile  bool         `yaml:"openFreezeFile" json:"openFreezeFile"`
}

func DefaultSettings() Settings {
	return Settings{
		SaveLocation:   SameDirectory,
		OpenFreezeFile: true,
	}
}

func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.SaveLocation, validation.Required, validation.In(SameDirectory, CustomDirectory)),
	)
}

type Config struct {
	Port string

	// Auth
	APIKey string

	// Vault
	VaultBackend    string
	VaultDir        string
	PathstoreURL    string
	PathstoreAPIKey string
	PathstorePrefix string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxBodyBytes int64

	// Job state
	JobTTL time.Duration

	SettingsFile string
	Settings     Settings
}

// Load reads the environment. When FREEZE_SETTINGS_FILE is set the file is
// merged over the default settings before the SAVE_LOCATION,
// CUSTOM_DIRECTORY and OPEN_FREEZE_FILE overrides are applied.
func Load() (Config, error) {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCFREEZE_API_KEY"),

		VaultBackend:    envOr("VAULT_BACKEND", BackendDir),
		VaultDir:        envOr("VAULT_DIR", "."),
		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),
		PathstorePrefix: envOr("PATHSTORE_PREFIX", "vault"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 1<<20),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		SettingsFile: os.Getenv("FREEZE_SETTINGS_FILE"),
		Settings:     DefaultSettings(),
	}

	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	if cfg.SettingsFile != "" {
		s, err := LoadSettings(cfg.SettingsFile, cfg.Settings)
		if err != nil {
			return cfg, err
		}
		cfg.Settings = s
	}
	cfg.Settings.SaveLocation = SaveLocation(envOr("SAVE_LOCATION", string(cfg.Settings.SaveLocation)))
	cfg.Settings.CustomDirectory = envOr("CUSTOM_DIRECTORY", cfg.Settings.CustomDirectory)
	cfg.Settings.OpenFreezeFile = envBool("OPEN_FREEZE_FILE", cfg.Settings.OpenFreezeFile)

	return cfg, nil
}

// LoadSettings decodes a YAML or JSON settings file over base. Keys missing
// from the file keep their value from base.
func LoadSettings(path string, base Settings) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read settings: %w", err)
	}
	s := base
	if err := yaml.Unmarshal(data, &s); err != nil {
		return base, fmt.Errorf("decode settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks the settings shared by every command.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.VaultBackend, validation.Required, validation.In(BackendDir, BackendPathstore)),
		validation.Field(&c.PathstoreURL,
			validation.When(c.VaultBackend == BackendPathstore, validation.Required),
			is.URL,
		),
		validation.Field(&c.WorkerCount, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxQueueSize, validation.Required, validation.Min(1)),
		validation.Field(&c.Settings),
	)
}

// ValidateServer additionally checks what the HTTP service needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIKey, validation.Required.Error("DOCFREEZE_API_KEY is required")),
		validation.Field(&c.Port, validation.Required, is.Port),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
