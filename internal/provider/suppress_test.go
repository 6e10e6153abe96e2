package provider

import (
	"testing"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	documentA     = "11111111000111"
	documentB     = "22222222000122"
	decoyDocument = "33.333.333/0001-33"
	foreignDoc    = "44444444000144"
	ourDocument   = "55555555000155"
	bankDocument  = "66666666000166"
)

func testNoise() NoiseConfig {
	noise := DefaultNoiseConfig()
	noise.DecoyDocuments = []string{decoyDocument}
	noise.ForeignBeneficiaryDocuments = []string{foreignDoc}
	noise.FeeInstitutionNames = []string{"Banco Exemplo"}
	noise.FeeInstitutionDocuments = []string{bankDocument}
	return noise
}

func TestApply_DecoyScenario(t *testing.T) {
	records := []model.RawRecord{
		{"idTransacao": "1", "tipo": "C", "valor": "100.00", "documentoPagador": documentA, "nomePagador": "A"},
		{"idTransacao": "2", "tipo": "D", "valor": "0.50", "documentoBeneficiario": decoyDocument},
		{"idTransacao": "3", "tipo": "C", "valor": "50", "documentoPagador": documentB, "nomePagador": "B"},
	}
	adapter := CorpX()
	ts := NormalizeAll(adapter, records, fixedNow)

	kept, dropped := Apply(adapter, ts, SuppressionContext{Noise: testNoise()})

	require.Len(t, kept, 2)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "1", kept[0].ID)
	assert.Equal(t, "3", kept[1].ID)
}

func TestSuppress_Rules(t *testing.T) {
	tests := []struct {
		name     string
		adapter  *Adapter
		txn      model.Transaction
		account  string
		wantDrop bool
		wantRule string
	}{
		{
			name:     "decoy debit",
			adapter:  CorpX(),
			txn:      model.Transaction{Type: model.TypeDebit, Value: 0.5, CounterpartyDocument: "33333333000133"},
			wantDrop: true,
			wantRule: "decoy_deposit",
		},
		{
			name:    "decoy amount as credit is kept",
			adapter: CorpX(),
			txn:     model.Transaction{Type: model.TypeCredit, Value: 0.5, CounterpartyDocument: "33333333000133"},
		},
		{
			name:    "decoy document with other amount is kept",
			adapter: CorpX(),
			txn:     model.Transaction{Type: model.TypeDebit, Value: 0.51, CounterpartyDocument: "33333333000133"},
		},
		{
			name:     "foreign beneficiary in any direction",
			adapter:  CorpX(),
			txn:      model.Transaction{Type: model.TypeCredit, Value: 900, BeneficiaryDocument: foreignDoc},
			wantDrop: true,
			wantRule: "foreign_beneficiary",
		},
		{
			name:     "scoped view drops unrelated record",
			adapter:  CorpX(),
			account:  "55.555.555/0001-55",
			txn:      model.Transaction{Type: model.TypeCredit, Value: 10, PayerDocument: documentA, Document: documentB},
			wantDrop: true,
			wantRule: "account_scope",
		},
		{
			name:    "scoped view keeps record touching the account",
			adapter: CorpX(),
			account: ourDocument,
			txn:     model.Transaction{Type: model.TypeCredit, Value: 10, PayerDocument: documentA, BeneficiaryDocument: ourDocument},
		},
		{
			name:    "all-accounts view keeps everything else",
			adapter: CorpX(),
			txn:     model.Transaction{Type: model.TypeCredit, Value: 10, PayerDocument: documentA},
		},
		{
			name:    "internal fee is not suppressed for corpx",
			adapter: CorpX(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 0.3, Description: "TRANSF.ENTRE CTAS",
				CounterpartyName: "BANCO EXEMPLO SA",
			},
		},
		{
			name:    "internal fee by name for tcr",
			adapter: TCR(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 0.3, Description: "Transf.entre ctas 123",
				CounterpartyName: "Banco Exemplo S.A.",
			},
			wantDrop: true,
			wantRule: "internal_fee",
		},
		{
			name:    "internal fee by document for tcr",
			adapter: TCR(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 1, OriginalDescription: "TRANSFERÊNCIA ENTRE CONTAS",
				CounterpartyDocument: bankDocument,
			},
			wantDrop: true,
			wantRule: "internal_fee",
		},
		{
			name:    "internal transfer above fee threshold is kept",
			adapter: TCR(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 1.5, Description: "TRANSF.ENTRE CTAS",
				CounterpartyDocument: bankDocument,
			},
		},
		{
			name:    "small transfer without internal keyword is kept",
			adapter: TCR(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 0.2, Description: "PIX ENVIADO",
				CounterpartyDocument: bankDocument,
			},
		},
		{
			name:    "small internal transfer to someone else is kept",
			adapter: TCR(),
			txn: model.Transaction{
				Type: model.TypeDebit, Value: 0.2, Description: "TRANSF.ENTRE CTAS",
				CounterpartyName: "Fulano", CounterpartyDocument: documentA,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := SuppressionContext{AccountDocument: tt.account, Noise: testNoise()}
			drop, rule := Suppress(tt.adapter, tt.txn, sc)
			assert.Equal(t, tt.wantDrop, drop)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestSuppress_FirstMatchWins(t *testing.T) {
	txn := model.Transaction{
		Type:                 model.TypeDebit,
		Value:                0.5,
		CounterpartyDocument: "33333333000133",
		BeneficiaryDocument:  foreignDoc,
	}

	drop, rule := Suppress(CorpX(), txn, SuppressionContext{Noise: testNoise()})

	assert.True(t, drop)
	assert.Equal(t, "decoy_deposit", rule)
}

func TestSuppress_EmptyNoiseKeepsEverything(t *testing.T) {
	txn := model.Transaction{Type: model.TypeDebit, Value: 0.5}

	drop, _ := Suppress(TCR(), txn, SuppressionContext{Noise: DefaultNoiseConfig()})
	assert.False(t, drop)

	drop, _ = Suppress(nil, txn, SuppressionContext{Noise: testNoise()})
	assert.False(t, drop)
}

func TestApply_DecisionIndependentOfBatch(t *testing.T) {
	sc := SuppressionContext{AccountDocument: ourDocument, Noise: testNoise()}
	batch := []model.Transaction{
		{ID: "a", Type: model.TypeCredit, Value: 10, BeneficiaryDocument: ourDocument},
		{ID: "b", Type: model.TypeDebit, Value: 0.5, CounterpartyDocument: decoyDocument, Document: ourDocument},
		{ID: "c", Type: model.TypeDebit, Value: 20, PayerDocument: documentA},
		{ID: "d", Type: model.TypeDebit, Value: 30, PayerDocument: ourDocument},
	}

	verdicts := make(map[string]bool, len(batch))
	for _, txn := range batch {
		drop, _ := Suppress(TCR(), txn, sc)
		verdicts[txn.ID] = drop
	}

	reversed := make([]model.Transaction, 0, len(batch))
	for i := len(batch) - 1; i >= 0; i-- {
		reversed = append(reversed, batch[i])
	}

	for _, input := range [][]model.Transaction{batch, reversed, batch[1:3], batch[2:]} {
		kept, dropped := Apply(TCR(), input, sc)
		wantDropped := 0
		for _, txn := range input {
			if verdicts[txn.ID] {
				wantDropped++
			}
		}
		assert.Equal(t, wantDropped, dropped)
		for _, txn := range kept {
			assert.False(t, verdicts[txn.ID], "record %s should have been dropped", txn.ID)
		}
	}

	assert.Equal(t, map[string]bool{"a": false, "b": true, "c": true, "d": false}, verdicts)
}
