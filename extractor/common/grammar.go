package common

import (
	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"
)

// Grammar is the extraction contract every bank implements. Refinements hold
// a generic grammar and delegate to it for whatever they do not override.
type Grammar interface {
	// Bank returns the bank code stamped on the statement, or "".
	Bank() string
	CardNumber(doc *Document) (string, error)
	StatementPeriod(doc *Document) (civil.Date, error)
	ClosingBalance(doc *Document) (BalanceExtraction, error)
	Rewards(doc *Document) RewardExtraction
	Transactions(doc *Document) []ParsedTransaction
	StatementDate(doc *Document) (*civil.Date, error)
	DueDate(doc *Document) (*civil.Date, error)
	MinimumDue(doc *Document) (*int64, error)
}

// Parse runs g over doc and assembles the statement. Required fields abort
// with a field-named error; optional fields that fail to normalize are
// dropped.
func Parse(g Grammar, doc *Document) (*ParsedStatement, error) {
	log := logrus.WithField("bank", g.Bank())

	card, err := g.CardNumber(doc)
	if err != nil {
		return nil, required(err, FieldCardLastFour)
	}
	month, err := g.StatementPeriod(doc)
	if err != nil {
		return nil, required(err, FieldStatementMonth)
	}
	balance, err := g.ClosingBalance(doc)
	if err != nil {
		return nil, required(err, FieldClosingBalance)
	}
	rewards := g.Rewards(doc)

	transactions := g.Transactions(doc)
	if len(transactions) == 0 {
		return nil, FieldNotFound(FieldTransactions)
	}

	statement := &ParsedStatement{
		CardLastFour:         card,
		StatementMonth:       MonthStart(month),
		ClosingBalanceMinor:  balance.ClosingMinor,
		AccountSummary:       balance.Summary,
		RewardPoints:         rewards.Closing,
		RewardPointsEarned:   rewards.Earned,
		RewardPointsPrevious: rewards.Previous,
		RewardPointsRedeemed: rewards.Redeemed,
		Transactions:         transactions,
	}
	if code := g.Bank(); code != "" {
		statement.BankCode = StringPtr(code)
	}

	if d, err := g.StatementDate(doc); err != nil {
		log.WithError(err).Debug("statement date unreadable")
	} else {
		statement.StatementDate = d
	}
	if d, err := g.DueDate(doc); err != nil {
		log.WithError(err).Debug("due date unreadable")
	} else {
		statement.DueDate = d
	}
	if v, err := g.MinimumDue(doc); err != nil {
		log.WithError(err).Debug("minimum due unreadable")
	} else {
		statement.MinimumDueMinor = v
	}

	if err := statement.Validate(); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"card":         statement.CardLastFour,
		"month":        statement.StatementMonth.String(),
		"transactions": len(statement.Transactions),
	}).Debug("statement parsed")
	return statement, nil
}

// required tags a nested parse failure with the field it broke. Anything
// that is not already structured becomes FieldNotFound.
func required(err error, field string) error {
	e := AsError(err)
	if e.Code == CodeExtractionFailed {
		return FieldNotFound(field)
	}
	if e.Field == "" {
		e.WithField(field)
	}
	return e
}
