// Package bankapi is the HTTP client for the provider statement backends.
package bankapi

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/service"
)

// Default endpoint paths, relative to BaseURL.
const (
	DefaultListPath   = "/transactions"
	DefaultVerifyPath = "/transactions/verify"
	DefaultSyncPath   = "/transactions/sync"
	DefaultTimeout    = 30 * time.Second
)

// Config holds the connection settings for one provider backend.
type Config struct {
	Provider   model.ProviderKind
	BaseURL    string
	APIKey     string
	ListPath   string
	VerifyPath string
	SyncPath   string
	Retry      service.RetryOptions
	Timeout    time.Duration
}

// Validate ensures the configuration can produce a working client.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("%w: provider is required", common.ErrMissingConfig)
	}
	if _, err := model.ParseProviderKind(string(c.Provider)); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: %s base URL is required", common.ErrMissingConfig, c.Provider)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: invalid base URL: %w", common.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: base URL must be http or https, got %q", common.ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.ListPath == "" {
		c.ListPath = DefaultListPath
	}
	if c.VerifyPath == "" {
		c.VerifyPath = DefaultVerifyPath
	}
	if c.SyncPath == "" {
		c.SyncPath = DefaultSyncPath
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		}
	}
	return c
}
