package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/Veraticus/statement-flow/internal/statement"
	"github.com/spf13/viper"
)

// FetchConfig tunes the fetch loop and the view.
type FetchConfig struct {
	Location *time.Location
	// Limit is how many visible records a reload aims for.
	Limit         int
	FetchPageSize int
	MaxIterations int
	ViewPageSize  int
}

// LoadFetchConfig reads fetch.* and view.* keys, falling back to the loop
// defaults. display.timezone sets the zone day boundaries are computed in.
func LoadFetchConfig() (FetchConfig, error) {
	cfg := FetchConfig{
		Limit:         viper.GetInt("fetch.limit"),
		FetchPageSize: viper.GetInt("fetch.page_size"),
		MaxIterations: viper.GetInt("fetch.max_iterations"),
		ViewPageSize:  viper.GetInt("view.page_size"),
		Location:      time.Local,
	}
	if cfg.Limit <= 0 {
		cfg.Limit = statement.DefaultLimit
	}
	if cfg.FetchPageSize <= 0 {
		cfg.FetchPageSize = statement.DefaultPageSize
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = statement.DefaultMaxIterations
	}
	if cfg.ViewPageSize <= 0 {
		cfg.ViewPageSize = statement.DefaultViewPageSize
	}

	if tz := viper.GetString("display.timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return FetchConfig{}, fmt.Errorf("%w: display.timezone: %w", common.ErrInvalidConfig, err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}

// LoadSuppressionConfig reads the noise literals under suppression.*. Unset
// thresholds keep their defaults; unset lists stay empty.
func LoadSuppressionConfig() (provider.NoiseConfig, error) {
	noise := provider.DefaultNoiseConfig()

	if viper.IsSet("suppression.decoy_amount") {
		noise.DecoyAmount = viper.GetFloat64("suppression.decoy_amount")
	}
	if viper.IsSet("suppression.fee_max_amount") {
		noise.FeeMaxAmount = viper.GetFloat64("suppression.fee_max_amount")
	}
	if noise.DecoyAmount < 0 || noise.FeeMaxAmount < 0 {
		return provider.NoiseConfig{}, fmt.Errorf("%w: suppression amounts must not be negative", common.ErrInvalidConfig)
	}

	noise.DecoyDocuments = documents("suppression.decoy_documents")
	noise.ForeignBeneficiaryDocuments = documents("suppression.foreign_beneficiary_documents")
	noise.FeeInstitutionDocuments = documents("suppression.fee_institution_documents")
	if viper.IsSet("suppression.fee_institution_names") {
		noise.FeeInstitutionNames = viper.GetStringSlice("suppression.fee_institution_names")
	}
	if viper.IsSet("suppression.internal_transfer_keywords") {
		noise.InternalTransferKeywords = viper.GetStringSlice("suppression.internal_transfer_keywords")
	}
	return noise, nil
}

// documents reads a document list and keeps only its digits.
func documents(key string) []string {
	var out []string
	for _, d := range viper.GetStringSlice(key) {
		if s := provider.SanitizeDocument(d); s != "" {
			out = append(out, s)
		}
	}
	return out
}
