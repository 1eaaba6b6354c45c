// Package config loads wlr settings from defaults, an optional YAML file,
// WLR_ environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/worklog-report/internal/model"
)

// Default configuration values.
const (
	DefaultRelayURL     = "http://localhost:8000"
	DefaultRelayTimeout = 60 * time.Second
	DefaultPageSize     = 50
	DefaultOutputDir    = "."
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "console"

	// EnvPrefix is prepended to every environment variable, e.g. WLR_JIRA_HOST.
	EnvPrefix = "WLR"
	// FileName is the config file base name searched when no path is given.
	FileName = "wlr"
)

// Config is the root configuration.
type Config struct {
	Relay  RelayConfig  `mapstructure:"relay"`
	Jira   JiraConfig   `mapstructure:"jira"`
	Query  QueryConfig  `mapstructure:"query"`
	Report ReportConfig `mapstructure:"report"`
	Log    LogConfig    `mapstructure:"log"`
}

// RelayConfig locates the relay.
type RelayConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0s"`
}

// JiraConfig holds the tracker credentials and the user to report on.
type JiraConfig struct {
	Host     string `mapstructure:"host" validate:"required,jirahost"`
	Email    string `mapstructure:"email" validate:"required,email"`
	APIToken string `mapstructure:"api_token" validate:"required"`
	// AccountID skips identity resolution when set.
	AccountID string `mapstructure:"account_id"`
	// SearchEmail is the user whose work is reported. Defaults to Email.
	SearchEmail string `mapstructure:"search_email" validate:"omitempty,email"`
}

// QueryConfig narrows the report.
type QueryConfig struct {
	Project  string `mapstructure:"project"`
	Start    string `mapstructure:"start" validate:"omitempty,isodate"`
	End      string `mapstructure:"end" validate:"omitempty,isodate"`
	PageSize int    `mapstructure:"page_size" validate:"min=1,max=100"`
}

// ReportConfig controls the exports.
type ReportConfig struct {
	OutputDir    string `mapstructure:"output_dir"`
	EmptyComment string `mapstructure:"empty_comment"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error off disabled"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Credential returns the per-call tracker credential.
func (c *Config) Credential() model.Credential {
	return model.Credential{Host: c.Jira.Host, Email: c.Jira.Email, APIToken: c.Jira.APIToken}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"relay-url":     "relay.url",
	"relay-token":   "relay.token",
	"timeout":       "relay.timeout",
	"host":          "jira.host",
	"email":         "jira.email",
	"api-token":     "jira.api_token",
	"account-id":    "jira.account_id",
	"search-email":  "jira.search_email",
	"project":       "query.project",
	"start":         "query.start",
	"end":           "query.end",
	"page-size":     "query.page_size",
	"output-dir":    "report.output_dir",
	"empty-comment": "report.empty_comment",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// Load reads configuration from the file at path (or wlr.yaml in the
// working directory or $HOME/.config/wlr), the environment and flags.
// Only flags present in flags and explicitly set override lower sources.
// The result is not validated; call Validate.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wlr"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// setDefaults registers every key so environment variables reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("relay.url", DefaultRelayURL)
	v.SetDefault("relay.token", "")
	v.SetDefault("relay.timeout", DefaultRelayTimeout)

	v.SetDefault("jira.host", "")
	v.SetDefault("jira.email", "")
	v.SetDefault("jira.api_token", "")
	v.SetDefault("jira.account_id", "")
	v.SetDefault("jira.search_email", "")

	v.SetDefault("query.project", "")
	v.SetDefault("query.start", "")
	v.SetDefault("query.end", "")
	v.SetDefault("query.page_size", DefaultPageSize)

	v.SetDefault("report.output_dir", DefaultOutputDir)
	v.SetDefault("report.empty_comment", "")

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// normalize trims user input into the shapes the rest of the program expects.
func (c *Config) normalize() {
	host := strings.TrimSpace(c.Jira.Host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	c.Jira.Host = strings.TrimRight(host, "/")

	c.Jira.Email = strings.TrimSpace(c.Jira.Email)
	c.Jira.AccountID = strings.TrimSpace(c.Jira.AccountID)
	c.Jira.SearchEmail = strings.TrimSpace(c.Jira.SearchEmail)
	if c.Jira.SearchEmail == "" {
		c.Jira.SearchEmail = c.Jira.Email
	}
	c.Query.Project = strings.TrimSpace(c.Query.Project)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = DefaultOutputDir
	}
}

const masked = "****"

// Masked renders the effective configuration as YAML with secrets hidden.
func (c *Config) Masked() string {
	hide := func(s string) string {
		if s == "" {
			return ""
		}
		return masked
	}
	doc := map[string]any{
		"relay": map[string]any{
			"url":     c.Relay.URL,
			"token":   hide(c.Relay.Token),
			"timeout": c.Relay.Timeout.String(),
		},
		"jira": map[string]any{
			"host":         c.Jira.Host,
			"email":        c.Jira.Email,
			"api_token":    hide(c.Jira.APIToken),
			"account_id":   c.Jira.AccountID,
			"search_email": c.Jira.SearchEmail,
		},
		"query": map[string]any{
			"project":   c.Query.Project,
			"start":     c.Query.Start,
			"end":       c.Query.End,
			"page_size": c.Query.PageSize,
		},
		"report": map[string]any{
			"output_dir":    c.Report.OutputDir,
			"empty_comment": c.Report.EmptyComment,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Sprintf("# cannot render configuration: %v\n", err)
	}
	return string(out)
}
