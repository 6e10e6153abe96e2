package config

import (
	"fmt"
	"strings"

	"github.com/Veraticus/statement-flow/internal/common"
	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/Veraticus/statement-flow/internal/provider"
	"github.com/spf13/viper"
)

type accountEntry struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Document string `mapstructure:"document"`
	Provider string `mapstructure:"provider"`
}

// LoadAccounts returns the configured accounts usable with kind. Entries
// without a provider apply to every provider.
func LoadAccounts(kind model.ProviderKind) ([]model.Account, error) {
	var entries []accountEntry
	if err := viper.UnmarshalKey("accounts", &entries); err != nil {
		return nil, fmt.Errorf("%w: accounts: %w", common.ErrInvalidConfig, err)
	}

	accounts := make([]model.Account, 0, len(entries))
	for i, e := range entries {
		if e.Provider != "" {
			k, err := model.ParseProviderKind(e.Provider)
			if err != nil {
				return nil, fmt.Errorf("%w: accounts[%d]: %w", common.ErrInvalidConfig, i, err)
			}
			if k != kind {
				continue
			}
		}
		doc := provider.SanitizeDocument(e.Document)
		if doc == "" {
			return nil, fmt.Errorf("%w: accounts[%d] has no document", common.ErrInvalidConfig, i)
		}
		accounts = append(accounts, model.Account{ID: e.ID, Name: e.Name, Document: doc})
	}
	return accounts, nil
}

// FindAccount resolves what a user typed for --account. Empty and "all" mean
// every account. A bare CPF or CNPJ is accepted even when not configured.
func FindAccount(accounts []model.Account, ref string) (model.Account, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.EqualFold(ref, "all") {
		return model.Account{}, nil
	}

	for _, a := range accounts {
		if strings.EqualFold(a.ID, ref) || strings.EqualFold(a.Name, ref) || provider.SameDocument(a.Document, ref) {
			return a, nil
		}
	}

	doc := provider.SanitizeDocument(ref)
	if provider.DocumentType(doc) != "" {
		return model.Account{Document: doc}, nil
	}
	return model.Account{}, fmt.Errorf("account %q: %w", ref, common.ErrNotFound)
}
