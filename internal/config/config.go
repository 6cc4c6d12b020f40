package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// UpstreamConfig holds the location of the Constructum CI API.
type UpstreamConfig struct {
	URL string `toml:"url"`
}

// OAuthConfig holds the identity-provider settings for the
// authorization-code flow. IssuerURL is the base URL of the provider; the
// rest of the endpoints are learned from its discovery document.
type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	IssuerURL    string `toml:"issuer_url"`
	RedirectURL  string `toml:"redirect_url"`
}

// ServerConfig holds the gateway's own listen settings.
type ServerConfig struct {
	Listen            string `toml:"listen"`
	SessionTTLMinutes int    `toml:"session_ttl_minutes"`
}

// Config holds all buildboard configuration.
type Config struct {
	Upstream UpstreamConfig `toml:"upstream"`
	OAuth    OAuthConfig    `toml:"oauth"`
	Server   ServerConfig   `toml:"server"`
}

const (
	defaultListen     = ":3000"
	defaultSessionTTL = 8 * time.Hour
)

// ListenOrDefault returns Server.Listen if set, otherwise defaultListen.
func (c Config) ListenOrDefault() string {
	if c.Server.Listen != "" {
		return c.Server.Listen
	}
	return defaultListen
}

// SessionTTL returns the configured session lifetime, or 8h if unset.
// Sessions hard-expire after this; there is no credential refresh.
func (c Config) SessionTTL() time.Duration {
	if c.Server.SessionTTLMinutes > 0 {
		return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
	}
	return defaultSessionTTL
}

// Validate checks that everything required to serve requests is present.
func (c Config) Validate() error {
	if c.Upstream.URL == "" {
		return fmt.Errorf("upstream.url is not set (or CONSTRUCTUM_API_URL)")
	}
	if c.OAuth.ClientID == "" {
		return fmt.Errorf("oauth.client_id is not set (or OAUTH_APP_ID)")
	}
	if c.OAuth.ClientSecret == "" {
		return fmt.Errorf("oauth.client_secret is not set (or OAUTH_CLIENT_SECRET)")
	}
	if c.OAuth.IssuerURL == "" {
		return fmt.Errorf("oauth.issuer_url is not set (or OAUTH_GITEA_URL)")
	}
	return nil
}

// LoadFrom reads configuration from the given TOML file path.
// If the file does not exist, it returns an empty config without error.
// Environment variables always take precedence over file values:
//   - CONSTRUCTUM_API_URL   overrides upstream.url
//   - OAUTH_APP_ID          overrides oauth.client_id
//   - OAUTH_CLIENT_SECRET   overrides oauth.client_secret
//   - OAUTH_GITEA_URL       overrides oauth.issuer_url
//   - OAUTH_REDIRECT_URL    overrides oauth.redirect_url
//   - BUILDBOARD_LISTEN     overrides server.listen
func LoadFrom(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// DefaultConfigPath returns the default path for the buildboard config file.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return home + "/.config/buildboard/config.toml"
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONSTRUCTUM_API_URL"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("OAUTH_APP_ID"); v != "" {
		cfg.OAuth.ClientID = v
	}
	if v := os.Getenv("OAUTH_CLIENT_SECRET"); v != "" {
		cfg.OAuth.ClientSecret = v
	}
	if v := os.Getenv("OAUTH_GITEA_URL"); v != "" {
		cfg.OAuth.IssuerURL = v
	}
	if v := os.Getenv("OAUTH_REDIRECT_URL"); v != "" {
		cfg.OAuth.RedirectURL = v
	}
	if v := os.Getenv("BUILDBOARD_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
}
