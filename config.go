package contentsync

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// GitHubConfig configures the remote content source.
type GitHubConfig struct {
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Token      string        `json:"token" yaml:"token"`
	Owner      string        `json:"owner" yaml:"owner"`
	Repo       string        `json:"repo" yaml:"repo"`
	Ref        string        `json:"ref" yaml:"ref"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	RateLimit  float64       `json:"rate_limit" yaml:"rate_limit"`
	RateBurst  int           `json:"rate_burst" yaml:"rate_burst"`
}

// StoreConfig configures the durable content store.
type StoreConfig struct {
	// DSN selects the backend by scheme: file:/:memory: for sqlite,
	// postgres:// for postgres.
	DSN string `json:"dsn" yaml:"dsn"`
	// Cache enables read-through repository caching.
	Cache bool `json:"cache" yaml:"cache"`
}

// WebhookConfig configures the trigger endpoint.
type WebhookConfig struct {
	Secret string `json:"secret" yaml:"secret"`
	Tenant string `json:"tenant" yaml:"tenant"`
}

// SyncConfig configures change detection and batch processing.
type SyncConfig struct {
	DefaultBranch     string            `json:"default_branch" yaml:"default_branch"`
	ContentDir        string            `json:"content_dir" yaml:"content_dir"`
	SettingsDir       string            `json:"settings_dir" yaml:"settings_dir"`
	ArticleExtensions []string          `json:"article_extensions" yaml:"article_extensions"`
	Workers           int               `json:"workers" yaml:"workers"`
	// SettingSchemas maps a settings key to a JSON Schema document used to
	// validate that key's payload.
	SettingSchemas map[string]string `json:"setting_schemas" yaml:"setting_schemas"`
}

// LoggingConfig configures the structured logging provider.
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level"`
	Format    string `json:"format" yaml:"format"`
	AddSource bool   `json:"add_source" yaml:"add_source"`
}

// Config is the full engine configuration.
type Config struct {
	GitHub  GitHubConfig  `json:"github" yaml:"github"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Webhook WebhookConfig `json:"webhook" yaml:"webhook"`
	Sync    SyncConfig    `json:"sync" yaml:"sync"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DefaultConfig returns a configuration with every tunable at its default.
// Credentials and repository coordinates must still be supplied.
func DefaultConfig() Config {
	return Config{
		GitHub: GitHubConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RateLimit:  10,
			RateBurst:  5,
		},
		Store: StoreConfig{
			DSN: "file::memory:?cache=shared",
		},
		Webhook: WebhookConfig{
			Tenant: "default",
		},
		Sync: SyncConfig{
			DefaultBranch:     "main",
			ContentDir:        "contents",
			SettingsDir:       "settings",
			ArticleExtensions: []string{".mdx", ".md"},
			Workers:           4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the configuration for the fields the engine cannot
// default.
func (c Config) Validate() error {
	return validation.Errors{
		"github.owner":   validation.Validate(c.GitHub.Owner, validation.Required),
		"github.repo":    validation.Validate(c.GitHub.Repo, validation.Required),
		"store.dsn":      validation.Validate(c.Store.DSN, validation.Required),
		"webhook.tenant": validation.Validate(c.Webhook.Tenant, validation.Required),
	}.Filter()
}
