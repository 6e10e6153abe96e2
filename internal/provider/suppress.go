package provider

import (
	"math"
	"strings"

	"github.com/Veraticus/statement-flow/internal/model"
)

// Default noise thresholds.
const (
	DefaultDecoyAmount  = 0.50
	DefaultFeeMaxAmount = 1.00
)

// NoiseConfig holds the business constants the suppression rules compare against.
// They are loaded from configuration rather than compiled in.
type NoiseConfig struct {
	DecoyDocuments              []string
	ForeignBeneficiaryDocuments []string
	FeeInstitutionNames         []string
	FeeInstitutionDocuments     []string
	InternalTransferKeywords    []string
	DecoyAmount                 float64
	FeeMaxAmount                float64
}

// DefaultNoiseConfig returns thresholds with no institution-specific literals.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		DecoyAmount:  DefaultDecoyAmount,
		FeeMaxAmount: DefaultFeeMaxAmount,
		InternalTransferKeywords: []string{
			"TRANSF.ENTRE CTAS",
			"TRANSFERENCIA ENTRE CONTAS",
		},
	}
}

// SuppressionContext is the per-view input to suppression.
type SuppressionContext struct {
	// AccountDocument scopes the view to one account; empty means all accounts.
	AccountDocument string
	Noise           NoiseConfig
}

// Scoped reports whether the view is restricted to a single account.
func (sc SuppressionContext) Scoped() bool {
	return SanitizeDocument(sc.AccountDocument) != ""
}

// Rule is one named suppression predicate. Match returning true drops the record.
type Rule struct {
	Match func(t model.Transaction, sc SuppressionContext) bool
	Name  string
}

// Suppress reports whether t should be hidden, and the name of the rule that
// matched. Rules run in adapter order and the first match wins. The decision
// depends only on t and sc.
func Suppress(a *Adapter, t model.Transaction, sc SuppressionContext) (bool, string) {
	if a == nil {
		return false, ""
	}
	for _, rule := range a.Rules {
		if rule.Match(t, sc) {
			return true, rule.Name
		}
	}
	return false, ""
}

// Apply filters ts, returning survivors in their original order and the number dropped.
func Apply(a *Adapter, ts []model.Transaction, sc SuppressionContext) ([]model.Transaction, int) {
	kept := make([]model.Transaction, 0, len(ts))
	dropped := 0
	for _, t := range ts {
		if drop, _ := Suppress(a, t, sc); drop {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}

// decoyDepositRule drops the fixed-amount test debits sent to a known institution.
var decoyDepositRule = Rule{
	Name: "decoy_deposit",
	Match: func(t model.Transaction, sc SuppressionContext) bool {
		if t.Type != model.TypeDebit || sc.Noise.DecoyAmount <= 0 {
			return false
		}
		if !sameCents(t.Value, sc.Noise.DecoyAmount) {
			return false
		}
		return anyDocument(sc.Noise.DecoyDocuments, t.CounterpartyDocument)
	},
}

// foreignBeneficiaryRule drops records whose beneficiary is a third party that
// shares the statement feed but is not ours.
var foreignBeneficiaryRule = Rule{
	Name: "foreign_beneficiary",
	Match: func(t model.Transaction, sc SuppressionContext) bool {
		return anyDocument(sc.Noise.ForeignBeneficiaryDocuments, t.BeneficiaryDocument)
	},
}

// accountScopeRule drops records that do not touch the scoped account.
var accountScopeRule = Rule{
	Name: "account_scope",
	Match: func(t model.Transaction, sc SuppressionContext) bool {
		if !sc.Scoped() {
			return false
		}
		scope := SanitizeDocument(sc.AccountDocument)
		return t.Document != scope && t.BeneficiaryDocument != scope && t.PayerDocument != scope
	},
}

// internalFeeRule drops small internal transfers to the bank itself, which the
// TCR feed reports alongside real activity.
var internalFeeRule = Rule{
	Name: "internal_fee",
	Match: func(t model.Transaction, sc SuppressionContext) bool {
		noise := sc.Noise
		if noise.FeeMaxAmount <= 0 || t.Value > noise.FeeMaxAmount+1e-9 {
			return false
		}
		if !isInternalTransfer(t, noise.InternalTransferKeywords) {
			return false
		}
		if anyDocument(noise.FeeInstitutionDocuments, t.CounterpartyDocument) {
			return true
		}
		name := foldText(t.CounterpartyName)
		for _, inst := range noise.FeeInstitutionNames {
			if inst = foldText(strings.TrimSpace(inst)); inst != "" && strings.Contains(name, inst) {
				return true
			}
		}
		return false
	},
}

func isInternalTransfer(t model.Transaction, keywords []string) bool {
	text := foldText(t.Description + " " + t.OriginalDescription)
	for _, kw := range keywords {
		if kw = foldText(strings.TrimSpace(kw)); kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func anyDocument(list []string, doc string) bool {
	for _, candidate := range list {
		if SameDocument(candidate, doc) {
			return true
		}
	}
	return false
}

func sameCents(a, b float64) bool {
	return math.Round(a*100) == math.Round(b*100)
}
