package model

import (
	"fmt"
	"strings"
)

// ProviderKind tags which banking provider produced a record.
type ProviderKind string

// Provider kinds.
const (
	ProviderCorpX ProviderKind = "corpx"
	ProviderTCR   ProviderKind = "tcr"
	ProviderOFX   ProviderKind = "ofx"
)

// ParseProviderKind accepts provider names as typed by users and config files.
// "bmp531" is the TCR provider's account code and is accepted as an alias.
func ParseProviderKind(s string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corpx":
		return ProviderCorpX, nil
	case "tcr", "bmp531", "bmp-531":
		return ProviderTCR, nil
	case "ofx", "qfx":
		return ProviderOFX, nil
	default:
		return "", fmt.Errorf("unknown provider %q: must be corpx, tcr, or ofx", s)
	}
}

// Account is a statement account a view can be scoped to.
type Account struct {
	ID       string
	Name     string
	Document string
}
