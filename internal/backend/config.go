package backend

import (
	"fmt"
	"strings"

	"spendwise/internal/config"
	"spendwise/internal/store/sqlite"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:              BackendType(appConfig.DataBackend),
		SQLiteDSNTemplate: appConfig.SQLiteDSNTemplate,
	}
	if cfg.SQLiteDSNTemplate == "" {
		cfg.SQLiteDSNTemplate = sqlite.DSNTemplate
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	if c.Type == SQLiteBackend && strings.Count(c.SQLiteDSNTemplate, "%s") != 1 {
		return fmt.Errorf("SQLite DSN template must contain exactly one %%s, got %q", c.SQLiteDSNTemplate)
	}

	return nil
}
