// Package sbi refines the generic grammar for SBI Card statements.
package sbi

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/aqlanhadi/stmtparse/extractor/txnlines"
	"github.com/sirupsen/logrus"
)

const Bank = "sbi"

type config struct {
	CardNumber      []*regexp.Regexp
	StatementDate   []*regexp.Regexp
	StatementPeriod []*regexp.Regexp
	ClosingBalance  []*regexp.Regexp
	RewardGroup     []*regexp.Regexp
	TxnRowStart     *regexp.Regexp
	TxnDateToken    *regexp.Regexp
	TrailingDate    *regexp.Regexp
	Transaction     []*regexp.Regexp
}

func loadConfig(set *patterns.Set) config {
	cfg := config{
		CardNumber:      set.Patterns(patterns.CardNumber),
		StatementDate:   set.Patterns(patterns.StatementDate),
		StatementPeriod: set.Patterns(patterns.StatementPeriod),
		ClosingBalance:  set.Patterns(patterns.ClosingBalance),
		RewardGroup:     set.Patterns("reward_group"),
		TxnRowStart:     set.Pattern("txn_row_start"),
		TxnDateToken:    set.Pattern(patterns.TxnDateToken),
		Transaction:     set.Patterns(patterns.Transaction),
	}
	if cfg.TxnDateToken != nil {
		cfg.TrailingDate = regexp.MustCompile(`\s+(?:` + cfg.TxnDateToken.String() + `)\s*$`)
	}
	return cfg
}

type Parser struct {
	base *generic.Parser
	cfg  config
	log  *logrus.Entry
}

func New(lib *patterns.Library) *Parser {
	return &Parser{
		base: generic.New(lib, generic.WithBankCode(Bank), generic.WithDateLayouts(lib.DateLayouts(Bank))),
		cfg:  loadConfig(lib.Set(Bank)),
		log:  logrus.WithField("parser", Bank),
	}
}

func (p *Parser) Bank() string { return Bank }

// CardNumber handles masks that only reveal two digits ("XXXX XXXX XXXX
// XX95"); those come back as "XX95".
func (p *Parser) CardNumber(doc *common.Document) (string, error) {
	var card string
	common.EachSubmatch(p.cfg.CardNumber, doc.Text, func(v string) bool {
		switch len(v) {
		case 2:
			card = "XX" + v
		case 4:
			card = v
		default:
			return true
		}
		return false
	})
	if card != "" {
		return card, nil
	}
	return p.base.CardNumber(doc)
}

// StatementPeriod uses the statement date, which closes the billing cycle,
// before any printed range.
func (p *Parser) StatementPeriod(doc *common.Document) (civil.Date, error) {
	d, err := common.FindDate(p.cfg.StatementDate, p.base.Layouts(), doc.Text)
	if err != nil {
		return civil.Date{}, err
	}
	if d != nil {
		return common.MonthStart(*d), nil
	}
	if re, m := common.FirstMatch(p.cfg.StatementPeriod, doc.Text); re != nil {
		end, err := p.base.ParseDate(common.Submatch(re, m, "end"))
		if err != nil {
			return civil.Date{}, err
		}
		return common.MonthStart(end), nil
	}
	return p.base.StatementPeriod(doc)
}

func (p *Parser) ClosingBalance(doc *common.Document) (common.BalanceExtraction, error) {
	v, err := common.FindAmount(p.cfg.ClosingBalance, doc.Text)
	if err != nil {
		return common.BalanceExtraction{}, err
	}
	if v != nil {
		return common.BalanceExtraction{ClosingMinor: *v}, nil
	}
	return p.base.ClosingBalance(doc)
}

func (p *Parser) StatementDate(doc *common.Document) (*civil.Date, error) {
	d, err := common.FindDate(p.cfg.StatementDate, p.base.Layouts(), doc.Text)
	if d != nil || err != nil {
		return d, err
	}
	return p.base.StatementDate(doc)
}

func (p *Parser) DueDate(doc *common.Document) (*civil.Date, error) {
	return p.base.DueDate(doc)
}

func (p *Parser) MinimumDue(doc *common.Document) (*int64, error) {
	return p.base.MinimumDue(doc)
}

// Transactions parses "DD Mon YY MERCHANT AMOUNT C|D" rows. The alternate
// decode wins when the primary rows look corrupt or it finds more of them.
func (p *Parser) Transactions(doc *common.Document) []common.ParsedTransaction {
	txns := p.scan(doc.Text)
	if alt, ok := doc.Alternate(); ok {
		altTxns := p.scan(alt)
		if !looksCorrupt(altTxns) && (looksCorrupt(txns) || len(altTxns) > len(txns)) {
			p.log.WithFields(logrus.Fields{"primary": len(txns), "alternate": len(altTxns)}).Debug("using alternate decode")
			txns = altTxns
		}
	}
	if len(txns) == 0 {
		return p.base.Transactions(doc)
	}
	p.log.WithField("transactions", len(txns)).Debug("transactions extracted")
	return txns
}

func (p *Parser) scan(text string) []common.ParsedTransaction {
	var out []common.ParsedTransaction
	for _, row := range p.stitch(text) {
		out = append(out, p.match(row)...)
	}
	if len(out) == 0 {
		// newlines may have been lost entirely
		out = p.match(text)
	}
	return txnlines.Dedupe(out)
}

// stitch joins wrapped continuation lines onto the row that precedes them.
func (p *Parser) stitch(text string) []string {
	if p.cfg.TxnRowStart == nil {
		return nil
	}
	var rows []string
	current := ""
	for _, line := range strings.Split(text, "\n") {
		line = common.CollapseSpaces(line)
		if line == "" {
			continue
		}
		if p.cfg.TxnRowStart.MatchString(line) {
			if current != "" {
				rows = append(rows, current)
			}
			current = line
			continue
		}
		if current != "" {
			current += " " + line
		}
	}
	if current != "" {
		rows = append(rows, current)
	}
	return rows
}

func (p *Parser) match(text string) []common.ParsedTransaction {
	var out []common.ParsedTransaction
	for _, re := range p.cfg.Transaction {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			date, err := p.base.ParseDate(common.Submatch(re, m, "date"))
			if err != nil {
				p.log.WithError(err).Debug("skipping row")
				continue
			}
			amount, err := common.ParseAmountMinor(common.Submatch(re, m, "amount"))
			if err != nil {
				p.log.WithError(err).Debug("skipping row")
				continue
			}
			kind := common.Debit
			if strings.EqualFold(common.Submatch(re, m, "crdr"), "c") {
				kind = common.Credit
			}
			out = append(out, common.ParsedTransaction{
				Date:        date,
				Description: p.cleanMerchant(common.Submatch(re, m, "desc")),
				AmountMinor: amount,
				Kind:        kind,
			})
		}
	}
	return out
}

// cleanMerchant cuts a description at an embedded row date, which is the
// next row bleeding in, and drops a trailing value date. If nothing is left
// the original text is kept.
func (p *Parser) cleanMerchant(text string) string {
	original := common.CollapseSpaces(text)
	if original == "" || p.cfg.TxnDateToken == nil {
		return original
	}
	s := original
	if loc := p.cfg.TxnDateToken.FindStringIndex(s); loc != nil && loc[0] > 0 {
		s = strings.TrimRight(s[:loc[0]], " ")
	}
	s = strings.TrimSpace(p.cfg.TrailingDate.ReplaceAllString(s, ""))
	if s == "" {
		return original
	}
	return s
}

var amountLikeRegex = regexp.MustCompile(`(?i)^[\d,]+\.\d{2}\s*[CD]?$`)

func looksCorrupt(txns []common.ParsedTransaction) bool {
	if len(txns) == 0 {
		return true
	}
	for _, t := range txns {
		desc := strings.TrimSpace(t.Description)
		if desc == "" || strings.EqualFold(desc, "to") || amountLikeRegex.MatchString(desc) {
			return true
		}
	}
	return false
}

var _ common.Grammar = (*Parser)(nil)
