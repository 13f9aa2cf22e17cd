// Package amex refines the generic grammar for American Express statements:
// US date order, five-digit account endings and year-less transaction rows.
package amex

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

const Bank = "amex"

type config struct {
	CardNumber      []*regexp.Regexp
	StatementPeriod []*regexp.Regexp
	StatementDate   []*regexp.Regexp
	ClosingBalance  []*regexp.Regexp
	DueDate         []*regexp.Regexp
	MinimumDue      []*regexp.Regexp
	Transaction     []*regexp.Regexp
	CrDrLine        []*regexp.Regexp
	RowLayouts      []string
}

func loadConfig(set *patterns.Set) config {
	return config{
		CardNumber:      set.Patterns(patterns.CardNumber),
		StatementPeriod: set.Patterns(patterns.StatementPeriod),
		StatementDate:   set.Patterns(patterns.StatementDate),
		ClosingBalance:  set.Patterns(patterns.ClosingBalance),
		DueDate:         set.Patterns(patterns.DueDate),
		MinimumDue:      set.Patterns(patterns.MinimumDue),
		Transaction:     set.Patterns(patterns.Transaction),
		CrDrLine:        set.Patterns("crdr_line"),
		RowLayouts:      set.RowLayouts,
	}
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

// CardNumber reads the five-digit account ending and keeps its last four.
func (p *Parser) CardNumber(doc *common.Document) (string, error) {
	if v, ok := common.FirstSubmatch(p.cfg.CardNumber, doc.Text); ok {
		if digits, ok := common.LastDigits(v, 4); ok {
			return digits, nil
		}
	}
	return p.base.CardNumber(doc)
}

func (p *Parser) StatementPeriod(doc *common.Document) (civil.Date, error) {
	end, err := p.periodEnd(doc)
	if err != nil {
		return civil.Date{}, err
	}
	if end != nil {
		return common.MonthStart(*end), nil
	}
	return p.base.StatementPeriod(doc)
}

// periodEnd is the closing date of the period, or the statement date when
// no range is printed. Row years are inferred from it.
func (p *Parser) periodEnd(doc *common.Document) (*civil.Date, error) {
	if re, m := common.FirstMatch(p.cfg.StatementPeriod, doc.Text); re != nil {
		end, err := p.base.ParseDate(common.Submatch(re, m, "end"))
		if err != nil {
			return nil, err
		}
		return &end, nil
	}
	return common.FindDate(p.cfg.StatementDate, p.base.Layouts(), doc.Text)
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

func (p *Parser) Rewards(doc *common.Document) common.RewardExtraction {
	return p.base.Rewards(doc)
}

func (p *Parser) StatementDate(doc *common.Document) (*civil.Date, error) {
	d, err := common.FindDate(p.cfg.StatementDate, p.base.Layouts(), doc.Text)
	if d != nil || err != nil {
		return d, err
	}
	return p.base.StatementDate(doc)
}

func (p *Parser) DueDate(doc *common.Document) (*civil.Date, error) {
	d, err := common.FindDate(p.cfg.DueDate, p.base.Layouts(), doc.Text)
	if d != nil || err != nil {
		return d, err
	}
	return p.base.DueDate(doc)
}

func (p *Parser) MinimumDue(doc *common.Document) (*int64, error) {
	v, err := common.FindAmount(p.cfg.MinimumDue, doc.Text)
	if v != nil || err != nil {
		return v, err
	}
	return p.base.MinimumDue(doc)
}

// Transactions reads "Month Day" rows and places them in the statement's
// year. The alternate decode is used when it recovers more rows.
func (p *Parser) Transactions(doc *common.Document) []common.ParsedTransaction {
	end, err := p.periodEnd(doc)
	if err != nil || end == nil {
		p.log.Debug("no period end for row years, using generic scan")
		return p.base.Transactions(doc)
	}

	txns := p.rows(doc.Lines, *end)
	if alt, ok := doc.Alternate(); ok {
		if altTxns := p.rows(strings.Split(alt, "\n"), *end); len(altTxns) > len(txns) {
			p.log.WithFields(logrus.Fields{"primary": len(txns), "alternate": len(altTxns)}).Debug("using alternate decode")
			txns = altTxns
		}
	}
	if len(txns) == 0 {
		return p.base.Transactions(doc)
	}
	return txns
}

var septRegex = regexp.MustCompile(`(?i)^sept\b`)

func (p *Parser) rows(lines []string, end civil.Date) []common.ParsedTransaction {
	var out []common.ParsedTransaction
	for i, line := range lines {
		line = common.CollapseSpaces(line)
		re, m := common.FirstMatch(p.cfg.Transaction, line)
		if re == nil {
			continue
		}

		token := septRegex.ReplaceAllString(common.Submatch(re, m, "date"), "Sep")
		date, err := common.ParseDate(p.cfg.RowLayouts, token)
		if err != nil {
			p.log.WithError(err).Debug("skipping row")
			continue
		}
		date, err = common.FixDateYear(date, end)
		if err != nil {
			p.log.WithError(err).Debug("skipping row")
			continue
		}
		raw := common.Submatch(re, m, "amount")
		amount, err := common.ParseAmountMinor(raw)
		if err != nil {
			p.log.WithError(err).Debug("skipping row")
			continue
		}

		crdr := common.Submatch(re, m, "crdr")
		if crdr == "" && i+1 < len(lines) {
			crdr, _ = common.FirstSubmatch(p.cfg.CrDrLine, lines[i+1])
		}
		kind := common.Debit
		if strings.EqualFold(crdr, "cr") || (crdr == "" && common.IsNegativeAmount(raw)) {
			kind = common.Credit
		}

		out = append(out, common.ParsedTransaction{
			Date:        date,
			Description: common.CollapseSpaces(common.Submatch(re, m, "desc")),
			AmountMinor: amount,
			Kind:        kind,
		})
	}
	return txnlines.Dedupe(out)
}

var _ common.Grammar = (*Parser)(nil)
