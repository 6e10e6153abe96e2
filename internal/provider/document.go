package provider

import "strings"

// Brazilian tax document kinds, by digit count.
const (
	DocumentTypeCPF  = "cpf"
	DocumentTypeCNPJ = "cnpj"
)

// SanitizeDocument strips punctuation from a CPF/CNPJ, keeping digits only.
func SanitizeDocument(doc string) string {
	var b strings.Builder
	b.Grow(len(doc))
	for _, r := range doc {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DocumentType classifies a sanitized document by length. Unknown shapes return "".
func DocumentType(doc string) string {
	switch len(SanitizeDocument(doc)) {
	case 11:
		return DocumentTypeCPF
	case 14:
		return DocumentTypeCNPJ
	default:
		return ""
	}
}

// SameDocument compares two documents ignoring formatting. Empty never matches.
func SameDocument(a, b string) bool {
	a, b = SanitizeDocument(a), SanitizeDocument(b)
	return a != "" && a == b
}
