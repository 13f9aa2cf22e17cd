package common

import (
	"fmt"
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
)

type Kind string

const (
	Debit  Kind = "debit"
	Credit Kind = "credit"
)

type ParsedTransaction struct {
	Date        civil.Date `json:"date"`
	Description string     `json:"description"`
	AmountMinor int64      `json:"amount_minor"`
	Kind        Kind       `json:"kind"`
	Category    *string    `json:"category,omitempty"`
}

// Validate checks the per-row invariants: a non-empty description and a
// non-negative magnitude.
func (t ParsedTransaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return InvalidStatement("transaction description is empty")
	}
	if t.AmountMinor < 0 {
		return InvalidStatement(fmt.Sprintf("transaction amount %d is negative", t.AmountMinor))
	}
	if t.Kind != Debit && t.Kind != Credit {
		return InvalidStatement(fmt.Sprintf("unknown transaction kind %q", t.Kind))
	}
	return nil
}

type ParsedAccountSummary struct {
	PreviousBalanceMinor  int64 `json:"previous_balance_minor"`
	CreditsMinor          int64 `json:"credits_minor"`
	DebitsMinor           int64 `json:"debits_minor"`
	FeesMinor             int64 `json:"fees_minor"`
	TotalOutstandingMinor int64 `json:"total_outstanding_minor"`
}

// Residual is previous - credits + debits + fees - outstanding. Zero means
// the summary balances exactly.
func (s ParsedAccountSummary) Residual() int64 {
	return s.PreviousBalanceMinor - s.CreditsMinor + s.DebitsMinor + s.FeesMinor - s.TotalOutstandingMinor
}

func (s ParsedAccountSummary) Reconciles(tolerance int64) bool {
	r := s.Residual()
	if r < 0 {
		r = -r
	}
	return r <= tolerance
}

type ParsedStatement struct {
	CardLastFour         string                `json:"card_last_four"`
	StatementMonth       civil.Date            `json:"statement_month"`
	ClosingBalanceMinor  int64                 `json:"closing_balance_minor"`
	RewardPoints         int64                 `json:"reward_points"`
	RewardPointsEarned   int64                 `json:"reward_points_earned"`
	RewardPointsPrevious *int64                `json:"reward_points_previous,omitempty"`
	RewardPointsRedeemed *int64                `json:"reward_points_redeemed,omitempty"`
	AccountSummary       *ParsedAccountSummary `json:"account_summary,omitempty"`
	Transactions         []ParsedTransaction   `json:"transactions"`
	BankCode             *string               `json:"bank_code,omitempty"`
	StatementDate        *civil.Date           `json:"statement_date,omitempty"`
	DueDate              *civil.Date           `json:"due_date,omitempty"`
	MinimumDueMinor      *int64                `json:"minimum_due_minor,omitempty"`
}

var cardLastFourRegex = regexp.MustCompile(`^(?:\d{4,5}|XX\d{2})$`)

func (s *ParsedStatement) Validate() error {
	if !cardLastFourRegex.MatchString(s.CardLastFour) {
		return InvalidStatement(fmt.Sprintf("card identity %q is not 4-5 digits or XXnn", s.CardLastFour))
	}
	if !s.StatementMonth.IsValid() || s.StatementMonth.Day != 1 {
		return InvalidStatement(fmt.Sprintf("statement month %s is not the first day of a month", s.StatementMonth))
	}
	for _, t := range s.Transactions {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RewardExtraction is the reward-point movement found on a statement. Only
// Closing is always known; the rest depends on the template.
type RewardExtraction struct {
	Closing  int64
	Earned   int64
	Previous *int64
	Redeemed *int64
}

// BalanceExtraction carries the closing balance together with the account
// summary it was derived from, when there was one.
type BalanceExtraction struct {
	ClosingMinor int64
	Summary      *ParsedAccountSummary
}

func Int64Ptr(v int64) *int64 { return &v }

func StringPtr(v string) *string { return &v }
