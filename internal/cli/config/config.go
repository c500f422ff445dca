package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/dpella/frontdp/internal/cli/session"
)

const (
	defaultServer = "http://localhost:8080"
	envPrefix     = "DPCTL"
)

// Config stores the CLI session between invocations: the server to talk
// to, the bearer token, and the identity cached at login time.
type Config struct {
	Server      string   `json:"server" mapstructure:"server"`
	AccessToken string   `json:"access_token" mapstructure:"access_token"`
	Handle      string   `json:"handle" mapstructure:"handle"`
	Name        string   `json:"name" mapstructure:"name"`
	Roles       []string `json:"roles" mapstructure:"roles"`
}

// Path returns the configuration file path (~/.dpctl/config.json).
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dpctl", "config.json"), nil
}

// Load reads the configuration file. A missing file yields a default,
// unauthenticated config. DPCTL_SERVER overrides the stored server.
func Load() (*Config, error) {
	file, err := Path()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.BindEnv("server")
	v.SetDefault("server", defaultServer)

	// A missing config file is fine: the user simply hasn't logged in yet.
	if _, err := os.Stat(file); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	return &cfg, nil
}

// Save writes the configuration, user read/write only since it carries the
// bearer token.
func (c *Config) Save() error {
	file, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(file, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ClearSession drops the token and cached identity, keeping the server.
func (c *Config) ClearSession() {
	c.AccessToken = ""
	c.Handle = ""
	c.Name = ""
	c.Roles = nil
}

// Session builds the session value the role guard and personalization run
// on. Unauthenticated configs yield a zero session.
func (c *Config) Session() session.Session {
	if c.AccessToken == "" || c.Handle == "" {
		return session.Session{}
	}
	return session.Session{
		Token: c.AccessToken,
		User: &session.User{
			Name:   c.Name,
			Handle: c.Handle,
			Roles:  c.Roles,
		},
	}
}
