// Package provider turns raw bank statement records into canonical transactions.
//
// Each supported bank is described by an Adapter: a declarative table mapping
// logical attributes to the provider's candidate field names, keyword tables
// used to infer direction, and the suppression rules that apply to it. The
// normalization and suppression pipeline itself is shared.
package provider

import "github.com/Veraticus/statement-flow/internal/model"

// Attribute is a logical transaction attribute that providers name differently.
type Attribute string

// Logical attributes.
const (
	AttrID                  Attribute = "id"
	AttrMovementNumber      Attribute = "movement_number"
	AttrDate                Attribute = "date"
	AttrValue               Attribute = "value"
	AttrType                Attribute = "type"
	AttrStatus              Attribute = "status"
	AttrPayerName           Attribute = "payer_name"
	AttrPayerDocument       Attribute = "payer_document"
	AttrBeneficiaryName     Attribute = "beneficiary_name"
	AttrBeneficiaryDocument Attribute = "beneficiary_document"
	AttrDocument            Attribute = "document"
	AttrEndToEnd            Attribute = "end_to_end"
	AttrDescription         Attribute = "description"
	AttrOriginalDescription Attribute = "original_description"
)

// FieldMap lists, per attribute, the source field names to try in priority order.
// Dotted names address nested objects.
type FieldMap map[Attribute][]string

// commonDateFields is the date priority shared by every provider.
var commonDateFields = []string{
	"transactionDatetime",
	"transactionDatetimeUtc",
	"transactionDate",
	"date",
}

// First returns the first candidate field holding a non-empty scalar value.
func (m FieldMap) First(raw model.RawRecord, attr Attribute) string {
	for _, field := range m[attr] {
		if v := raw.String(field); v != "" {
			return v
		}
	}
	return ""
}

// FirstValue is like First but returns the untouched value, so numbers keep
// their JSON type for amount parsing.
func (m FieldMap) FirstValue(raw model.RawRecord, attr Attribute) (any, bool) {
	for _, field := range m[attr] {
		v, ok := raw.Lookup(field)
		if !ok || model.ScalarString(v) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}
