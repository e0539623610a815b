// Package config loads the program configuration from an optional file and
// DINERSQL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DINERSQL_SALES_PATH
const EnvPrefix = "DINERSQL"

// Config represents the application's configuration structure.
type Config struct {
	AppName        string `json:"app-name" mapstructure:"app-name"`
	Master         string `json:"master" mapstructure:"master"`
	MembersPath    string `json:"members-path" mapstructure:"members-path"`
	SalesPath      string `json:"sales-path" mapstructure:"sales-path"`
	MenuPath       string `json:"menu-path" mapstructure:"menu-path"`
	Format         string `json:"format" mapstructure:"format"`
	ShowRows       int    `json:"show-rows" mapstructure:"show-rows"`
	Truncate       bool   `json:"truncate" mapstructure:"truncate"`
	LogLevel       string `json:"log-level" mapstructure:"log-level"`
	EngineLogLevel string `json:"engine-log-level" mapstructure:"engine-log-level"`
}

var defaults = map[string]interface{}{
	"app-name":         "dinersql",
	"master":           "local[1]",
	"members-path":     "testdata/members.csv",
	"sales-path":       "testdata/sales.csv",
	"menu-path":        "testdata/menu.csv",
	"format":           "table",
	"show-rows":        20,
	"truncate":         true,
	"log-level":        "INFO",
	"engine-log-level": "ERROR",
}

var requiredFields = []string{
	"members-path",
	"sales-path",
	"menu-path",
}

// InitConfig reads configuration. Environment variables take precedence
// over the config file, which takes precedence over defaults. With an empty
// path a dinersql.yaml or dinersql.json in the working directory is used if
// present; otherwise the file at path must exist.
func InitConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	} else {
		v.SetConfigName("dinersql")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("could not read config: %w", err)
			}
		}
	}

	for _, field := range requiredFields {
		if strings.TrimSpace(v.GetString(field)) == "" {
			return nil, fmt.Errorf("missing required config field: %s", field)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values viper cannot type-check
func (c *Config) Validate() error {
	var errs []error
	if c.ShowRows < 0 {
		errs = append(errs, fmt.Errorf("show-rows must be non-negative, got %d", c.ShowRows))
	}
	if c.Master != "local[1]" {
		errs = append(errs, fmt.Errorf("master %q is not supported; only local[1] runs here", c.Master))
	}
	return errors.Join(errs...)
}
