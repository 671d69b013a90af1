// Package config loads the budget.yaml configuration, layers environment
// variables on top, and validates the credential groups before any remote
// system is contacted.
package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// DefaultLookbackDays is the rolling window of transactions fetched per run.
const DefaultLookbackDays = 2

// Config is the top-level budget.yaml configuration.
type Config struct {
	SimpleFin    SimpleFinConfig `yaml:"simplefin"`
	Paperless    PaperlessConfig `yaml:"paperless"`
	Google       GoogleConfig    `yaml:"google"`
	LookbackDays int             `env:"LOOKBACK_DAYS" yaml:"lookback_days"`
}

// SimpleFinConfig holds bank-feed credentials.
type SimpleFinConfig struct {
	AccessURL string `env:"SIMPLEFIN_ACCESS_URL" yaml:"access_url"`
	Username  string `env:"SIMPLEFIN_USERNAME"   yaml:"username"`
	Password  string `env:"SIMPLEFIN_PASSWORD"   yaml:"password"`
}

// PaperlessConfig holds document-store credentials and field mapping.
type PaperlessConfig struct {
	URL             string `env:"PAPERLESS_URL"   yaml:"url"`
	Token           string `env:"PAPERLESS_TOKEN" yaml:"token"`
	DocumentType    string `yaml:"document_type"`
	TotalFieldID    int    `yaml:"total_field"`
	CategoryFieldID int    `yaml:"category_field"`
}

// GoogleConfig holds spreadsheet credentials and sheet names.
type GoogleConfig struct {
	Credentials   string `env:"GOOGLE_CREDENTIALS"   yaml:"credentials"`
	SpreadsheetID string `env:"SHEETS_SPREADSHEET_ID" yaml:"spreadsheet_id"`
	SheetName     string `env:"SHEETS_RANGE_NAME"     yaml:"sheet_name"`
	MappingSheet  string `env:"MAPPING_RANGE_NAME"    yaml:"mapping_sheet"`
}

// Load reads the config file (if present), applies environment overrides on
// top, and fills defaults. Environment values win over file values.
func Load(path string) (*Config, error) {
	var fileCfg Config
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Environment-only configuration is fine.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := mergo.Merge(&cfg, fileCfg); err != nil {
		return nil, fmt.Errorf("merging config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Google.SheetName == "" {
		cfg.Google.SheetName = "transactions"
	}
	if cfg.Google.MappingSheet == "" {
		cfg.Google.MappingSheet = "lookup"
	}
	if cfg.LookbackDays == 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
}

// Validate checks that every credential group is present. All problems are
// reported at once so the user can fix them in one pass.
func (c *Config) Validate() error {
	var missing []string

	if c.SimpleFin.AccessURL == "" {
		missing = append(missing, "SimpleFIN credentials (simplefin.access_url)")
	}
	if c.Paperless.URL == "" || c.Paperless.Token == "" {
		missing = append(missing, "Paperless credentials (paperless.url, paperless.token)")
	}
	if c.Google.Credentials == "" || c.Google.SpreadsheetID == "" {
		missing = append(missing, "Google credentials (google.credentials, google.spreadsheet_id)")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, "; "))
	}
	return nil
}
