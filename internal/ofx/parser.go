// Package ofx imports OFX/QFX statement files.
package ofx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/statement-flow/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser turns OFX/QFX statement files into raw records.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{logger: slog.Default().With("component", "ofx")}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns one raw record per statement
// line, laid out for the OFX provider adapter.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.RawRecord, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var records []model.RawRecord
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			records = append(records, p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID), stmt.CurDef)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			records = append(records, p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID), stmt.CurDef)...)
		}
	}

	p.logger.Info("Parsed OFX file",
		"total_transactions", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, accountID string, currency ofxgo.CurrSymbol) []model.RawRecord {
	if list == nil {
		return nil
	}
	records := make([]model.RawRecord, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		records = append(records, p.convertTransaction(ofxTx, accountID, currency.String()))
	}
	return records
}

// convertTransaction converts an OFX transaction to a raw record. OFX signs
// amounts, so the sign decides the direction.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, currency string) model.RawRecord {
	amount := ofxTx.TrnAmt.FloatString(2)
	direction := "credit"
	if ofxTx.TrnAmt.Sign() < 0 {
		direction = "debit"
	}

	r := model.RawRecord{
		"fitId":     string(ofxTx.FiTID),
		"posted":    ofxTx.DtPosted.Time.Format(time.RFC3339),
		"amount":    json.Number(amount),
		"direction": direction,
		"trnType":   ofxTx.TrnType.String(),
		"name":      strings.TrimSpace(string(ofxTx.Name)),
		"payee":     p.extractMerchantName(ofxTx),
		"accountId": accountID,
	}
	if currency != "" && currency != "XXX" {
		r["currency"] = currency
	}
	if ofxTx.DtUser != nil && !ofxTx.DtUser.Time.IsZero() {
		r["userDate"] = ofxTx.DtUser.Time.Format(time.RFC3339)
	}
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" {
		r["memo"] = memo
	}
	if ofxTx.CheckNum != "" {
		r["checkNumber"] = string(ofxTx.CheckNum)
	}
	if ofxTx.RefNum != "" {
		r["refNum"] = string(ofxTx.RefNum)
	}
	if ofxTx.CorrectFiTID != "" {
		r["correctFitId"] = string(ofxTx.CorrectFiTID)
	}
	return r
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	// Fall back to NAME field
	name := string(tx.Name)

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		// Sometimes MEMO has better merchant info
		name = string(tx.Memo)
	}

	// Basic cleanup
	name = strings.TrimSpace(name)

	// Remove common prefixes
	prefixes := []string{
		"PIX RECEBIDO - ",
		"PIX ENVIADO - ",
		"PIX RECEBIDO ",
		"PIX ENVIADO ",
		"TED RECEBIDA ",
		"TED ENVIADA ",
		"COMPRA CARTAO ",
		"COMPRA NO DEBITO ",
		"POS PURCHASE ",
		"DEBIT CARD PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Clean up date patterns like "MM/DD" at the beginning
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PIX",
		"TED",
		"PAGAMENTO",
		"TRANSFERENCIA",
		"COMPRA",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	accountMap := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			accountMap[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			accountMap[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(accountMap))
	for acct := range accountMap {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
