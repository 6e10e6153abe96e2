package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/statement-flow/internal/bankapi"
	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/service"
	"github.com/spf13/viper"
)

// DefaultProvider returns the provider named by the provider key, or CorpX.
func DefaultProvider() (model.ProviderKind, error) {
	name := viper.GetString("provider")
	if strings.TrimSpace(name) == "" {
		return model.ProviderCorpX, nil
	}
	kind, err := model.ParseProviderKind(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return kind, nil
}

// LoadProviderConfig loads the backend settings for one provider.
// It follows this precedence:
// 1. Viper configuration (providers.<kind>.* in the config file or STMT_ env vars)
// 2. Direct environment variables (<KIND>_BASE_URL, <KIND>_API_KEY)
// 3. Client defaults
func LoadProviderConfig(kind model.ProviderKind) (*bankapi.Config, error) {
	if kind == model.ProviderOFX {
		return nil, fmt.Errorf("%w: ofx statements are imported from files, not fetched", common.ErrInvalidConfig)
	}
	prefix := "providers." + string(kind) + "."

	cfg := &bankapi.Config{
		Provider:   kind,
		BaseURL:    viper.GetString(prefix + "base_url"),
		APIKey:     viper.GetString(prefix + "api_key"),
		ListPath:   viper.GetString(prefix + "list_path"),
		VerifyPath: viper.GetString(prefix + "verify_path"),
		SyncPath:   viper.GetString(prefix + "sync_path"),
		Timeout:    viper.GetDuration(prefix + "timeout"),
		Retry: service.RetryOptions{
			MaxAttempts:  viper.GetInt(prefix + "retry.max_attempts"),
			InitialDelay: viper.GetDuration(prefix + "retry.initial_delay"),
			MaxDelay:     viper.GetDuration(prefix + "retry.max_delay"),
			Multiplier:   viper.GetFloat64(prefix + "retry.multiplier"),
		},
	}

	// Override with direct environment variables if not set
	env := strings.ToUpper(string(kind))
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(env + "_BASE_URL")
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(env + "_API_KEY")
	}
	if cfg.Retry.MaxAttempts > 0 && cfg.Retry.Multiplier == 0 {
		cfg.Retry.Multiplier = 2.0
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
