package config

import (
	"errors"
	"net/url"
	"time"
)

// SharePointConfig locates the games list and controls the HTTP client used to reach it.
type SharePointConfig struct {
	SiteURL     string        `env:"SHAREPOINT_SITE_URL"`
	ListTitle   string        `env:"SHAREPOINT_LIST_TITLE"   envDefault:"Games List"`
	AccessToken string        `env:"SHAREPOINT_ACCESS_TOKEN"`
	HTTPTimeout time.Duration `env:"SHAREPOINT_HTTP_TIMEOUT" envDefault:"10s"`
}

func loadSharePoint() (SharePointConfig, error) {
	var cfg SharePointConfig
	if err := parseEnv(&cfg); err != nil {
		return SharePointConfig{}, err
	}
	return cfg, nil
}

// validate requires an absolute site URL and a positive timeout.
func (c SharePointConfig) validate() error {
	if c.SiteURL == "" {
		return errors.New("SHAREPOINT_SITE_URL is required for the sharepoint backend")
	}
	u, err := url.Parse(c.SiteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("SHAREPOINT_SITE_URL must be an absolute URL")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("SHAREPOINT_HTTP_TIMEOUT must be positive")
	}
	return nil
}
