// Package txnlines turns the lines of a transaction section into
// transactions. Records may span several physical lines; a chunk pass keyed
// on date positions backs up the line pass when rows come out short.
package txnlines

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/sirupsen/logrus"
)

// Config is the bank-specific part of the machine.
type Config struct {
	// DateLine matches a line that opens a record. Groups: date, optional
	// time and tail.
	DateLine *regexp.Regexp
	// DateToken finds every date occurrence in a section.
	DateToken  *regexp.Regexp
	EndMarkers []*regexp.Regexp
	ParseDate  func(string) (civil.Date, error)
}

type State int

const (
	Idle State = iota
	Accumulating
)

func (s State) String() string {
	if s == Accumulating {
		return "accumulating"
	}
	return "idle"
}

const money = `(?P<sign>[+-])?\s*(?:Rs\.?\s*|INR\s*|₹\s*|C\s*|\$\s*)?(?P<amount>\d[\d,]*\.\d{2})\s*(?P<crdr>(?i:cr|dr))?`

var (
	amountOnlyRegex     = regexp.MustCompile(`^(?:(?P<pre>(?i:cr))\s+)?` + money + `$`)
	trailingAmountRegex = regexp.MustCompile(`^(?P<desc>.*?)\s+` + money + `$`)
	shortIntRegex       = regexp.MustCompile(`^[+-]?\s?\d{1,5}$`)
	pointsTailRegex     = regexp.MustCompile(`\s+[+-]\s?\d{1,5}$`)
	moneyTokenRegex     = regexp.MustCompile(`[+-]?\s*(?:\bRs\.?\s*|\bINR\s*|₹\s*|\bC\s+|\$\s*)?\d[\d,]*\.\d{2}(?:\s*(?i:cr|dr)\b)?`)
	timeTokenRegex      = regexp.MustCompile(`^\s*\|?\s*\d{1,2}:\d{2}(?::\d{2})?`)
	signedPointsRegex   = regexp.MustCompile(`(?:^|\s)[+-]\s?\d{1,5}(?:\s|$)`)
)

// Machine is the line state machine. It is not safe for concurrent use.
type Machine struct {
	cfg       Config
	state     State
	date      civil.Date
	fragments []string
	out       []common.ParsedTransaction
	log       *logrus.Entry

	// fed counts Feed calls; starts[i] is the call that opened out[i].
	fed    int
	start  int
	starts []int
}

func NewMachine(cfg Config) *Machine {
	return &Machine{cfg: cfg, log: logrus.WithField("component", "txnlines")}
}

func (m *Machine) State() State { return m.state }

// Feed consumes one line. It returns false once an end marker is seen; the
// caller should stop feeding the section.
func (m *Machine) Feed(line string) bool {
	idx := m.fed
	m.fed++
	line = common.CollapseSpaces(line)
	if line == "" {
		return true
	}
	for _, end := range m.cfg.EndMarkers {
		if end.MatchString(line) {
			m.abandon()
			return false
		}
	}

	if match := m.cfg.DateLine.FindStringSubmatch(line); match != nil {
		m.abandon()
		token := common.Submatch(m.cfg.DateLine, match, "date")
		date, err := m.cfg.ParseDate(token)
		if err != nil {
			m.log.WithError(err).Debug("skipping row with unreadable date")
			return true
		}
		m.state, m.date, m.fragments, m.start = Accumulating, date, nil, idx

		tail := common.Submatch(m.cfg.DateLine, match, "tail")
		if tail == "" {
			return true
		}
		if am := trailingAmountRegex.FindStringSubmatch(tail); am != nil {
			desc := pointsTailRegex.ReplaceAllString(common.Submatch(trailingAmountRegex, am, "desc"), "")
			m.fragments = append(m.fragments, desc)
			m.complete(trailingAmountRegex, am)
			return true
		}
		m.fragments = append(m.fragments, pointsTailRegex.ReplaceAllString(tail, ""))
		return true
	}

	if m.state != Accumulating {
		return true
	}
	if am := amountOnlyRegex.FindStringSubmatch(line); am != nil {
		m.complete(amountOnlyRegex, am)
		return true
	}
	if shortIntRegex.MatchString(line) {
		return true
	}
	m.fragments = append(m.fragments, line)
	return true
}

// Finish drops any unfinished record and returns the rows in input order.
func (m *Machine) Finish() []common.ParsedTransaction {
	m.abandon()
	return m.out
}

func (m *Machine) abandon() {
	if m.state == Accumulating {
		m.log.WithField("date", m.date.String()).Debug("dropping record without amount")
	}
	m.state, m.fragments = Idle, nil
}

func (m *Machine) complete(re *regexp.Regexp, match []string) {
	defer func() { m.state, m.fragments = Idle, nil }()

	desc := common.CollapseSpaces(strings.Join(m.fragments, " "))
	if desc == "" {
		m.log.WithField("date", m.date.String()).Debug("dropping record without description")
		return
	}
	amount, err := common.ParseAmountMinor(common.Submatch(re, match, "amount"))
	if err != nil {
		m.log.WithError(err).Debug("skipping row with unreadable amount")
		return
	}
	marker := common.Submatch(re, match, "crdr")
	if marker == "" {
		marker = common.Submatch(re, match, "pre")
	}
	m.starts = append(m.starts, m.start)
	m.out = append(m.out, common.ParsedTransaction{
		Date:        m.date,
		Description: desc,
		AmountMinor: amount,
		Kind:        kindOf(common.Submatch(re, match, "sign"), marker),
	})
}

func kindOf(sign, crdr string) common.Kind {
	if sign == "+" || strings.EqualFold(crdr, "cr") {
		return common.Credit
	}
	return common.Debit
}
