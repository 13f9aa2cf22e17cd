// Package generic is the baseline statement grammar. It parses any
// statement on its own and is the base every bank refinement delegates to.
package generic

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/aqlanhadi/stmtparse/extractor/txnlines"
	"github.com/sirupsen/logrus"
)

type config struct {
	CardNumber      []*regexp.Regexp
	StatementPeriod []*regexp.Regexp
	StatementDate   []*regexp.Regexp
	ClosingBalance  []*regexp.Regexp
	Rewards         []*regexp.Regexp
	DueDate         []*regexp.Regexp
	MinimumDue      []*regexp.Regexp
	Transaction     []*regexp.Regexp
}

func loadConfig(set *patterns.Set) config {
	return config{
		CardNumber:      set.Patterns(patterns.CardNumber),
		StatementPeriod: set.Patterns(patterns.StatementPeriod),
		StatementDate:   set.Patterns(patterns.StatementDate),
		ClosingBalance:  set.Patterns(patterns.ClosingBalance),
		Rewards:         set.Patterns(patterns.Rewards),
		DueDate:         set.Patterns(patterns.DueDate),
		MinimumDue:      set.Patterns(patterns.MinimumDue),
		Transaction:     set.Patterns(patterns.Transaction),
	}
}

type Parser struct {
	cfg     config
	bank    string
	layouts []string
	log     *logrus.Entry
}

type Option func(*Parser)

// WithBankCode stamps the detected bank on statements parsed generically.
func WithBankCode(code string) Option {
	return func(p *Parser) { p.bank = code }
}

// WithDateLayouts replaces the date grammar, usually with a bank's layouts
// followed by the generic ones.
func WithDateLayouts(layouts []string) Option {
	return func(p *Parser) { p.layouts = layouts }
}

func New(lib *patterns.Library, opts ...Option) *Parser {
	p := &Parser{
		cfg:     loadConfig(lib.Generic()),
		layouts: lib.DateLayouts(patterns.Generic),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logrus.WithFields(logrus.Fields{"parser": "generic", "bank": p.bank})
	return p
}

func (p *Parser) Bank() string { return p.bank }

// ParseDate parses token with this parser's date grammar.
func (p *Parser) ParseDate(token string) (civil.Date, error) {
	return common.ParseDate(p.layouts, token)
}

func (p *Parser) Layouts() []string { return p.layouts }

func (p *Parser) CardNumber(doc *common.Document) (string, error) {
	var card string
	common.EachSubmatch(p.cfg.CardNumber, doc.Text, func(v string) bool {
		if digits, ok := common.LastDigits(v, 4); ok {
			card = digits
			return false
		}
		return true
	})
	if card == "" {
		return "", common.FieldNotFound(common.FieldCardLastFour)
	}
	p.log.Debug("found card number")
	return card, nil
}

// StatementPeriod returns the month of the period end, or of the statement
// date when there is no range.
func (p *Parser) StatementPeriod(doc *common.Document) (civil.Date, error) {
	if re, m := common.FirstMatch(p.cfg.StatementPeriod, doc.Text); re != nil {
		end, err := p.ParseDate(common.Submatch(re, m, "end"))
		if err != nil {
			return civil.Date{}, err
		}
		return common.MonthStart(end), nil
	}
	d, err := common.FindDate(p.cfg.StatementDate, p.layouts, doc.Text)
	if err != nil {
		return civil.Date{}, err
	}
	if d == nil {
		return civil.Date{}, common.FieldNotFound(common.FieldStatementMonth)
	}
	return common.MonthStart(*d), nil
}

func (p *Parser) ClosingBalance(doc *common.Document) (common.BalanceExtraction, error) {
	v, err := common.FindAmount(p.cfg.ClosingBalance, doc.Text)
	if err != nil {
		return common.BalanceExtraction{}, err
	}
	if v == nil {
		return common.BalanceExtraction{}, common.FieldNotFound(common.FieldClosingBalance)
	}
	return common.BalanceExtraction{ClosingMinor: *v}, nil
}

// Rewards only knows the current balance; earned stays zero.
func (p *Parser) Rewards(doc *common.Document) common.RewardExtraction {
	token, ok := common.FirstSubmatch(p.cfg.Rewards, doc.Text)
	if !ok {
		return common.RewardExtraction{}
	}
	v, ok := ParseCount(token)
	if !ok {
		return common.RewardExtraction{}
	}
	return common.RewardExtraction{Closing: v}
}

func (p *Parser) StatementDate(doc *common.Document) (*civil.Date, error) {
	return common.FindDate(p.cfg.StatementDate, p.layouts, doc.Text)
}

func (p *Parser) DueDate(doc *common.Document) (*civil.Date, error) {
	return common.FindDate(p.cfg.DueDate, p.layouts, doc.Text)
}

func (p *Parser) MinimumDue(doc *common.Document) (*int64, error) {
	return common.FindAmount(p.cfg.MinimumDue, doc.Text)
}

func (p *Parser) Transactions(doc *common.Document) []common.ParsedTransaction {
	txns := p.ScanTransactions(doc.Text)
	if len(txns) > 0 {
		return txns
	}
	if alt, ok := doc.Alternate(); ok {
		p.log.Debug("no rows in primary text, scanning alternate decode")
		return p.ScanTransactions(alt)
	}
	return nil
}

// ScanTransactions runs the single full-text row regex over text.
func (p *Parser) ScanTransactions(text string) []common.ParsedTransaction {
	var out []common.ParsedTransaction
	for _, re := range p.cfg.Transaction {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			t, err := p.row(re, m)
			if err != nil {
				p.log.WithError(err).Debug("skipping row")
				continue
			}
			if t.AmountMinor == 0 {
				continue
			}
			out = append(out, t)
		}
	}
	return txnlines.Dedupe(out)
}

func (p *Parser) row(re *regexp.Regexp, m []string) (common.ParsedTransaction, error) {
	date, err := p.ParseDate(common.Submatch(re, m, "date"))
	if err != nil {
		return common.ParsedTransaction{}, err
	}
	raw := common.Submatch(re, m, "amount")
	amount, err := common.ParseAmountMinor(raw)
	if err != nil {
		return common.ParsedTransaction{}, err
	}
	desc := common.CollapseSpaces(common.Submatch(re, m, "desc"))
	return common.ParsedTransaction{
		Date:        date,
		Description: desc,
		AmountMinor: amount,
		Kind:        KindOf(desc, raw, common.Submatch(re, m, "crdr")),
	}, nil
}

// KindOf applies the baseline rule: an explicit CR/DR marker wins, then a
// negative amount, then credit/refund wording.
func KindOf(desc, rawAmount, crdr string) common.Kind {
	switch strings.ToUpper(strings.TrimSpace(crdr)) {
	case "CR":
		return common.Credit
	case "DR":
		return common.Debit
	}
	if common.IsNegativeAmount(rawAmount) {
		return common.Credit
	}
	lowered := strings.ToLower(desc)
	if strings.Contains(lowered, "credit") || strings.Contains(lowered, "refund") {
		return common.Credit
	}
	return common.Debit
}

// ParseCount parses a point count such as "4,045".
func ParseCount(token string) (int64, bool) {
	digits := strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	if digits == "" {
		return 0, false
	}
	var v int64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
		v = v*10 + int64(r-'0')
	}
	return v, true
}

var _ common.Grammar = (*Parser)(nil)
