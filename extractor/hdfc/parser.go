// Package hdfc refines the generic grammar for HDFC Bank credit card
// statements.
package hdfc

import (
	"regexp"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/aqlanhadi/stmtparse/extractor/reconcile"
	"github.com/aqlanhadi/stmtparse/extractor/txnlines"
	"github.com/sirupsen/logrus"
)

const Bank = "hdfc"

const (
	summaryWindow      = 600
	rewardWindow       = 400
	summaryTolerance   = 3
	summaryGroupLength = 5
)

type config struct {
	CardNumber      []*regexp.Regexp
	StatementPeriod []*regexp.Regexp
	StatementDate   []*regexp.Regexp
	AccountSummary  []*regexp.Regexp
	ClosingBalance  []*regexp.Regexp
	RewardSummary   []*regexp.Regexp
	RewardBalance   []*regexp.Regexp
	RewardLabels    [][]*regexp.Regexp
	DueDate         []*regexp.Regexp
	MinimumDue      []*regexp.Regexp
	SectionStart    []*regexp.Regexp
	SectionEnd      []*regexp.Regexp
	TxnDateLine     *regexp.Regexp
	TxnDateToken    *regexp.Regexp
}

func loadConfig(set *patterns.Set) config {
	return config{
		CardNumber:      set.Patterns(patterns.CardNumber),
		StatementPeriod: set.Patterns(patterns.StatementPeriod),
		StatementDate:   set.Patterns(patterns.StatementDate),
		AccountSummary:  set.Patterns("account_summary"),
		ClosingBalance:  set.Patterns(patterns.ClosingBalance),
		RewardSummary:   set.Patterns("reward_summary"),
		RewardBalance:   set.Patterns("reward_balance"),
		RewardLabels: [][]*regexp.Regexp{
			set.Patterns("reward_label_opening"),
			set.Patterns("reward_label_earned"),
			set.Patterns("reward_label_disbursed"),
			set.Patterns("reward_label_adjusted"),
			set.Patterns("reward_label_closing"),
		},
		DueDate:      set.Patterns(patterns.DueDate),
		MinimumDue:   set.Patterns(patterns.MinimumDue),
		SectionStart: set.Patterns(patterns.SectionStart),
		SectionEnd:   set.Patterns(patterns.SectionEnd),
		TxnDateLine:  set.Pattern(patterns.TxnDateLine),
		TxnDateToken: set.Pattern(patterns.TxnDateToken),
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

// CardNumber reads the masked "Card No" field in its several renderings and
// keeps the last four digits.
func (p *Parser) CardNumber(doc *common.Document) (string, error) {
	var card string
	common.EachSubmatch(p.cfg.CardNumber, doc.Text, func(v string) bool {
		digits, ok := common.LastDigits(v, 4)
		card = digits
		return !ok
	})
	if card != "" {
		return card, nil
	}
	return p.base.CardNumber(doc)
}

// StatementPeriod prefers an explicit range; most statements only print a
// single statement date.
func (p *Parser) StatementPeriod(doc *common.Document) (civil.Date, error) {
	if re, m := common.FirstMatch(p.cfg.StatementPeriod, doc.Text); re != nil {
		end, err := p.base.ParseDate(common.Submatch(re, m, "end"))
		if err != nil {
			return civil.Date{}, err
		}
		return common.MonthStart(end), nil
	}
	d, err := common.FindDate(p.cfg.StatementDate, p.base.Layouts(), doc.Text)
	if err != nil {
		return civil.Date{}, err
	}
	if d != nil {
		return common.MonthStart(*d), nil
	}
	return p.base.StatementPeriod(doc)
}

// ClosingBalance takes the outstanding figure of a reconciled account
// summary when one is printed, else the labelled totals.
func (p *Parser) ClosingBalance(doc *common.Document) (common.BalanceExtraction, error) {
	if summary, ok := p.accountSummary(doc.Text); ok {
		p.log.WithField("outstanding", summary.TotalOutstandingMinor).Debug("account summary reconciled")
		return common.BalanceExtraction{ClosingMinor: summary.TotalOutstandingMinor, Summary: &summary}, nil
	}
	v, err := common.FindAmount(p.cfg.ClosingBalance, doc.Text)
	if err != nil {
		return common.BalanceExtraction{}, err
	}
	if v != nil {
		return common.BalanceExtraction{ClosingMinor: *v}, nil
	}
	return p.base.ClosingBalance(doc)
}

var moneyRegex = regexp.MustCompile(`\b\d[\d,]*\.\d{2}\b`)

func (p *Parser) accountSummary(text string) (common.ParsedAccountSummary, bool) {
	problem := reconcile.AccountSummary(summaryTolerance)
	for _, re := range p.cfg.AccountSummary {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			window := text[loc[1]:min(len(text), loc[1]+summaryWindow)]

			var values []int64
			for _, token := range moneyRegex.FindAllString(window, -1) {
				v, err := common.ParseAmountMinor(token)
				if err != nil {
					continue
				}
				values = append(values, v)
			}
			for i := 0; i+summaryGroupLength <= len(values); i++ {
				c, err := problem.Solve(values[i : i+summaryGroupLength])
				if err != nil {
					continue
				}
				return reconcile.SummaryOf(c), true
			}
		}
	}
	return common.ParsedAccountSummary{}, false
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

// Transactions runs the line machine over every Domestic/International
// section. Statements without those headers go to the generic scan.
func (p *Parser) Transactions(doc *common.Document) []common.ParsedTransaction {
	if p.cfg.TxnDateLine == nil || p.cfg.TxnDateToken == nil {
		return p.base.Transactions(doc)
	}
	sections := p.sections(doc.Lines)
	if len(sections) == 0 {
		p.log.Debug("no transaction section, using generic scan")
		return p.base.Transactions(doc)
	}

	cfg := txnlines.Config{
		DateLine:   p.cfg.TxnDateLine,
		DateToken:  p.cfg.TxnDateToken,
		EndMarkers: p.cfg.SectionEnd,
		ParseDate:  p.base.ParseDate,
	}
	var out []common.ParsedTransaction
	for _, section := range sections {
		out = append(out, txnlines.Extract(cfg, section)...)
	}
	out = txnlines.Dedupe(out)
	if len(out) == 0 {
		return p.base.Transactions(doc)
	}
	p.log.WithFields(logrus.Fields{"sections": len(sections), "transactions": len(out)}).Debug("transactions extracted")
	return out
}

// sections splits lines at every section header. The header itself is not
// part of the section.
func (p *Parser) sections(lines []string) [][]string {
	var out [][]string
	current := -1
	for _, line := range lines {
		if matchesAny(p.cfg.SectionStart, line) {
			out = append(out, nil)
			current = len(out) - 1
			continue
		}
		if current >= 0 {
			out[current] = append(out[current], line)
		}
	}
	return out
}

func matchesAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

var _ common.Grammar = (*Parser)(nil)
