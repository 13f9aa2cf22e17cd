// Package maybank refines the generic grammar for Maybank 2 Cards
// statements. One statement can carry several cards (a Mastercard and an
// Amex are issued as a pair); balances are summed across the card sections.
package maybank

import (
	"regexp"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/sirupsen/logrus"
)

const Bank = "maybank"

const (
	creditSuffix     = "CR"
	summaryTolerance = 1
)

type config struct {
	CardHeader      []*regexp.Regexp
	CardNumber      []*regexp.Regexp
	StatementDate   []*regexp.Regexp
	DueDate         []*regexp.Regexp
	PreviousBalance []*regexp.Regexp
	TotalCredit     []*regexp.Regexp
	TotalDebit      []*regexp.Regexp
	ClosingBalance  []*regexp.Regexp
	Transaction     []*regexp.Regexp
	RowLayouts      []string
}

func loadConfig(set *patterns.Set) config {
	return config{
		CardHeader:      set.Patterns("card_header"),
		CardNumber:      set.Patterns(patterns.CardNumber),
		StatementDate:   set.Patterns(patterns.StatementDate),
		DueDate:         set.Patterns(patterns.DueDate),
		PreviousBalance: set.Patterns("previous_balance"),
		TotalCredit:     set.Patterns("total_credit"),
		TotalDebit:      set.Patterns("total_debit"),
		ClosingBalance:  set.Patterns(patterns.ClosingBalance),
		Transaction:     set.Patterns(patterns.Transaction),
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

// CardNumber uses the first card section header, then the account number
// block of single-card statements.
func (p *Parser) CardNumber(doc *common.Document) (string, error) {
	if cards := p.cards(doc.Text); len(cards) > 0 {
		if len(cards) > 1 {
			p.log.WithField("cards", cards).Debug("multi-card statement, reporting the first card")
		}
		return cards[0], nil
	}
	if v, ok := common.FirstSubmatch(p.cfg.CardNumber, doc.Text); ok {
		if digits, ok := common.LastDigits(v, 4); ok {
			return digits, nil
		}
	}
	return p.base.CardNumber(doc)
}

// cards lists the distinct card endings in header order.
func (p *Parser) cards(text string) []string {
	var cards []string
	for _, re := range p.cfg.CardHeader {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			digits, ok := common.LastDigits(common.Submatch(re, m, "value"), 4)
			if ok && !slices.Contains(cards, digits) {
				cards = append(cards, digits)
			}
		}
	}
	return cards
}

func (p *Parser) StatementPeriod(doc *common.Document) (civil.Date, error) {
	d, err := p.StatementDate(doc)
	if err != nil {
		return civil.Date{}, err
	}
	if d != nil {
		return common.MonthStart(*d), nil
	}
	return p.base.StatementPeriod(doc)
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
	return p.base.MinimumDue(doc)
}

func (p *Parser) Rewards(doc *common.Document) common.RewardExtraction {
	return p.base.Rewards(doc)
}

// ClosingBalance sums every card's sub total; a CR sub total is a credit
// balance and counts negative. The summary is attached only when the
// summed previous balance, credits and debits account for it.
func (p *Parser) ClosingBalance(doc *common.Document) (common.BalanceExtraction, error) {
	closing, found, err := sumAmounts(p.cfg.ClosingBalance, doc.Text)
	if err != nil {
		return common.BalanceExtraction{}, err
	}
	if !found {
		return p.base.ClosingBalance(doc)
	}

	result := common.BalanceExtraction{ClosingMinor: closing}
	previous, okPrev, err1 := sumAmounts(p.cfg.PreviousBalance, doc.Text)
	credits, okCr, err2 := sumAmounts(p.cfg.TotalCredit, doc.Text)
	debits, okDr, err3 := sumAmounts(p.cfg.TotalDebit, doc.Text)
	if err1 != nil || err2 != nil || err3 != nil || !okPrev || !okCr || !okDr {
		return result, nil
	}

	summary := common.ParsedAccountSummary{
		PreviousBalanceMinor:  previous,
		CreditsMinor:          credits,
		DebitsMinor:           debits,
		TotalOutstandingMinor: closing,
	}
	if summary.Reconciles(summaryTolerance) {
		result.Summary = &summary
	} else {
		p.log.WithField("residual", summary.Residual()).Warn("account summary does not reconcile")
	}
	return result, nil
}

// sumAmounts adds up every match of the first pattern that matches at all.
func sumAmounts(res []*regexp.Regexp, text string) (int64, bool, error) {
	for _, re := range res {
		matches := re.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		var total int64
		for _, m := range matches {
			v, err := signedAmount(common.Submatch(re, m, "value"))
			if err != nil {
				return 0, false, err
			}
			total += v
		}
		return total, true, nil
	}
	return 0, false, nil
}

func signedAmount(token string) (int64, error) {
	v, err := common.ParseAmountMinor(token)
	if err != nil {
		return 0, err
	}
	if strings.HasSuffix(strings.TrimSpace(token), creditSuffix) {
		v = -v
	}
	return v, nil
}

// Transactions reads "posted dd/mm  txn dd/mm  description  amount[CR]"
// rows, dates them into the statement year and orders them by date across
// card sections.
func (p *Parser) Transactions(doc *common.Document) []common.ParsedTransaction {
	stmtDate, err := p.StatementDate(doc)
	if err != nil || stmtDate == nil {
		p.log.Debug("no statement date for row years, using generic scan")
		return p.base.Transactions(doc)
	}

	var txns []common.ParsedTransaction
	for _, line := range doc.Lines {
		line = common.CollapseSpaces(line)
		re, m := common.FirstMatch(p.cfg.Transaction, line)
		if re == nil {
			continue
		}

		date, err := common.ParseDate(p.cfg.RowLayouts, common.Submatch(re, m, "date"))
		if err != nil {
			p.log.WithError(err).Debug("skipping row")
			continue
		}
		date, err = common.FixDateYear(date, *stmtDate)
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
		if strings.EqualFold(common.Submatch(re, m, "crdr"), creditSuffix) {
			kind = common.Credit
		}

		txns = append(txns, common.ParsedTransaction{
			Date:        date,
			Description: common.Submatch(re, m, "desc"),
			AmountMinor: amount,
			Kind:        kind,
		})
	}
	if len(txns) == 0 {
		return p.base.Transactions(doc)
	}

	slices.SortStableFunc(txns, func(a, b common.ParsedTransaction) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case b.Date.Before(a.Date):
			return 1
		}
		return 0
	})
	p.checkBalance(doc, txns)
	return txns
}

// checkBalance warns when previous balance plus the rows does not land on
// the stated closing balance.
func (p *Parser) checkBalance(doc *common.Document, txns []common.ParsedTransaction) {
	previous, okPrev, _ := sumAmounts(p.cfg.PreviousBalance, doc.Text)
	closing, okClose, _ := sumAmounts(p.cfg.ClosingBalance, doc.Text)
	if !okPrev || !okClose {
		return
	}
	calculated := previous
	for _, t := range txns {
		if t.Kind == common.Credit {
			calculated -= t.AmountMinor
		} else {
			calculated += t.AmountMinor
		}
	}
	if calculated != closing {
		p.log.WithFields(logrus.Fields{"calculated": calculated, "stated": closing}).Warn("ending balance mismatch")
	}
}

var _ common.Grammar = (*Parser)(nil)
