// Package config loads the bridge configuration from a YAML file and the
// environment. Environment variables take precedence over file values, so a
// fully configured environment needs no file at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mailbridge-io/mailbridge/internal/mail"
)

// AccountConfig holds the mail account identity and server endpoints.
type AccountConfig struct {
	// Address is the account identity used for login and as sender.
	Address string `mapstructure:"address" yaml:"address"`

	// Password is the account secret. Leave it empty to resolve the
	// secret through the credential helper instead.
	Password string `mapstructure:"password" yaml:"password"`

	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort int    `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port" yaml:"smtp_port"`
}

// LoggingConfig holds log output preferences.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Config is the top-level bridge configuration.
type Config struct {
	Account AccountConfig `mapstructure:"account" yaml:"account"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// envBindings maps config keys to the environment variables that override
// them.
var envBindings = map[string]string{
	"account.address":   "EMAIL_USER",
	"account.password":  "EMAIL_PASS",
	"account.imap_host": "IMAP_SERVER",
	"account.imap_port": "IMAP_PORT",
	"account.smtp_host": "SMTP_SERVER",
	"account.smtp_port": "SMTP_PORT",
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailbridge/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailbridge", "config.yaml")
}

// Load reads configuration from the given YAML file path using Viper. A
// missing file is not an error; defaults and environment variables still
// apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("account.imap_host", "imap.gmail.com")
	v.SetDefault("account.imap_port", 993)
	v.SetDefault("account.smtp_host", "smtp.gmail.com")
	v.SetDefault("account.smtp_port", 587)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the given configuration to a YAML file at path, creating
// parent directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("account", cfg.Account)
	v.Set("logging", cfg.Logging)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// SecretSource returns the stored secret for an account address.
type SecretSource func(address string) (string, error)

// Credentials assembles the engine credentials, resolving the password
// through secrets when the configuration carries none.
func (c *Config) Credentials(secrets SecretSource) mail.Credentials {
	password := c.Account.Password
	if password == "" && secrets != nil {
		if stored, err := secrets(c.Account.Address); err == nil {
			password = stored
		}
	}
	return mail.Credentials{
		Address:  c.Account.Address,
		Password: password,
		IMAPHost: c.Account.IMAPHost,
		IMAPPort: c.Account.IMAPPort,
		SMTPHost: c.Account.SMTPHost,
		SMTPPort: c.Account.SMTPPort,
	}
}
