package provider

import (
	"errors"
	"fmt"

	"github.com/Veraticus/statement-flow/internal/model"
)

// ErrUnknownProvider is returned when no adapter exists for a provider tag.
var ErrUnknownProvider = errors.New("unknown provider")

// Adapter captures everything that differs between providers.
type Adapter struct {
	Kind   model.ProviderKind
	Fields FieldMap

	// Discriminator values (compared case-insensitively) naming each direction.
	DebitMarkers  []string
	CreditMarkers []string

	// Description substrings used when the discriminator is missing.
	DebitKeywords  []string
	CreditKeywords []string

	// Suppression rules, evaluated in order.
	Rules []Rule
}

// ForKind returns a fresh adapter for the provider tag.
func ForKind(kind model.ProviderKind) (*Adapter, error) {
	switch kind {
	case model.ProviderCorpX:
		return CorpX(), nil
	case model.ProviderTCR:
		return TCR(), nil
	case model.ProviderOFX:
		return OFX(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
}

// ForName parses a provider name and returns its adapter.
func ForName(name string) (*Adapter, error) {
	kind, err := model.ParseProviderKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnknownProvider, err)
	}
	return ForKind(kind)
}

// baseRules apply to every provider.
func baseRules() []Rule {
	return []Rule{decoyDepositRule, foreignBeneficiaryRule, accountScopeRule}
}

// CorpX describes the CorpX statement API, which uses Portuguese field names and
// a single-letter D/C discriminator.
func CorpX() *Adapter {
	return &Adapter{
		Kind: model.ProviderCorpX,
		Fields: FieldMap{
			AttrID:                  {"idTransacao", "id", "transactionId"},
			AttrMovementNumber:      {"nrMovimento", "numeroMovimento", "movementNumber"},
			AttrDate:                append(append([]string(nil), commonDateFields...), "dataMovimento", "dataHora", "data"),
			AttrValue:               {"valor", "valorLancamento", "amount", "value"},
			AttrType:                {"tipo", "tipoLancamento", "dc", "type"},
			AttrStatus:              {"status", "situacao"},
			AttrPayerName:           {"nomePagador", "pagador.nome", "payerName"},
			AttrPayerDocument:       {"documentoPagador", "cpfCnpjPagador", "pagador.documento", "payerDocument"},
			AttrBeneficiaryName:     {"nomeBeneficiario", "beneficiario.nome", "beneficiaryName"},
			AttrBeneficiaryDocument: {"documentoBeneficiario", "cpfCnpjBeneficiario", "beneficiario.documento", "beneficiaryDocument"},
			AttrDocument:            {"documento", "cpfCnpj", "document"},
			AttrEndToEnd:            {"endToEnd", "endToEndId", "idFimAFim", "e2e"},
			AttrDescription:         {"descricao", "historico", "description"},
			AttrOriginalDescription: {"descricaoOriginal", "historicoCompleto", "originalDescription"},
		},
		DebitMarkers:   []string{"d", "debito", "débito", "debit"},
		CreditMarkers:  []string{"c", "credito", "crédito", "credit"},
		DebitKeywords:  defaultDebitKeywords,
		CreditKeywords: defaultCreditKeywords,
		Rules:          baseRules(),
	}
}

// TCR describes the TCR (BMP 531) statement API: English names, nested payer and
// beneficiary objects, and a debit/credit discriminator.
func TCR() *Adapter {
	return &Adapter{
		Kind: model.ProviderTCR,
		Fields: FieldMap{
			AttrID:                  {"id", "transactionId", "codigoTransacao"},
			AttrMovementNumber:      {"movementNumber", "sequence", "nsu"},
			AttrDate:                append(append([]string(nil), commonDateFields...), "createdAt", "settledAt"),
			AttrValue:               {"amount", "value", "valor"},
			AttrType:                {"type", "direction", "operation"},
			AttrStatus:              {"status", "state"},
			AttrPayerName:           {"payer.name", "payerName", "debtor.name"},
			AttrPayerDocument:       {"payer.document", "payer.taxId", "payerDocument", "debtor.document"},
			AttrBeneficiaryName:     {"beneficiary.name", "beneficiaryName", "creditor.name"},
			AttrBeneficiaryDocument: {"beneficiary.document", "beneficiary.taxId", "beneficiaryDocument", "creditor.document"},
			AttrDocument:            {"document", "account.document", "taxId"},
			AttrEndToEnd:            {"endToEndId", "end_to_end_id", "endToEnd"},
			AttrDescription:         {"description", "complement", "remittanceInformation"},
			AttrOriginalDescription: {"originalDescription", "rawDescription"},
		},
		DebitMarkers:   []string{"debit", "d", "out", "cash_out", "debito"},
		CreditMarkers:  []string{"credit", "c", "in", "cash_in", "credito"},
		DebitKeywords:  defaultDebitKeywords,
		CreditKeywords: defaultCreditKeywords,
		Rules:          append(baseRules(), internalFeeRule),
	}
}

// OFX describes records produced by the OFX statement importer.
func OFX() *Adapter {
	return &Adapter{
		Kind: model.ProviderOFX,
		Fields: FieldMap{
			AttrID:                  {"fitId"},
			AttrMovementNumber:      {"checkNumber", "refNum"},
			AttrDate:                append(append([]string(nil), commonDateFields...), "posted", "userDate"),
			AttrValue:               {"amount"},
			AttrType:                {"direction"},
			AttrStatus:              {"status"},
			AttrPayerName:           {"payee"},
			AttrBeneficiaryName:     {"payee"},
			AttrDocument:            {"accountDocument"},
			AttrEndToEnd:            {"correctFitId"},
			AttrDescription:         {"memo", "name"},
			AttrOriginalDescription: {"name"},
		},
		DebitMarkers:   []string{"debit"},
		CreditMarkers:  []string{"credit"},
		DebitKeywords:  defaultDebitKeywords,
		CreditKeywords: defaultCreditKeywords,
		Rules:          baseRules(),
	}
}

var defaultDebitKeywords = []string{
	"TRANSF.ENTRE CTAS",
	"TRANSFERENCIA ENVIADA",
	"PIX ENVIADO",
	"PIX EMITIDO",
	"TED ENVIADA",
	"PAGAMENTO",
	"TARIFA",
	"SAQUE",
}

var defaultCreditKeywords = []string{
	"PIX RECEBIDO",
	"TED RECEBIDA",
	"TRANSFERENCIA RECEBIDA",
	"DEPOSITO",
	"ESTORNO",
}
