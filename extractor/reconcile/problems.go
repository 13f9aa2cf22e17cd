package reconcile

import "github.com/aqlanhadi/stmtparse/extractor/common"

// Account summary roles.
const (
	Previous = iota
	Credits
	Debits
	Fees
	Outstanding
)

// AccountSummary balances previous - credits + debits + fees == outstanding.
func AccountSummary(tolerance int64) Problem {
	return Problem{
		Roles:     []string{"previous", "credits", "debits", "fees", "outstanding"},
		Tolerance: tolerance,
		Residual: func(v []int64) int64 {
			return v[Previous] - v[Credits] + v[Debits] + v[Fees] - v[Outstanding]
		},
		Penalty: func(c Candidate, group []int64) int64 {
			lo, hi := minMax(group)
			v := c.Values
			var p int64
			if v[Outstanding] == lo && lo < hi {
				p += 1000
			}
			if v[Fees] != 0 && hasZero(group) {
				p += 10
			}
			p += 5 * c.Displacement()
			if v[Outstanding] != hi {
				p += 3
			}
			return p
		},
		TieBreak: func(v []int64) []int64 {
			return []int64{v[Fees], -v[Outstanding]}
		},
	}
}

// SummaryOf converts an account summary candidate.
func SummaryOf(c Candidate) common.ParsedAccountSummary {
	return common.ParsedAccountSummary{
		PreviousBalanceMinor:  c.Values[Previous],
		CreditsMinor:          c.Values[Credits],
		DebitsMinor:           c.Values[Debits],
		FeesMinor:             c.Values[Fees],
		TotalOutstandingMinor: c.Values[Outstanding],
	}
}

// Reward balance roles.
const (
	RewardPrevious = iota
	RewardEarned
	RewardRedeemed
	RewardClosing
)

// RewardBalance balances previous + earned - redeemed == closing exactly.
func RewardBalance() Problem {
	return Problem{
		Roles: []string{"previous", "earned", "redeemed", "closing"},
		Residual: func(v []int64) int64 {
			return v[RewardPrevious] + v[RewardEarned] - v[RewardRedeemed] - v[RewardClosing]
		},
		Penalty: func(c Candidate, group []int64) int64 {
			lo, hi := minMax(group)
			v := c.Values
			var p int64
			if v[RewardClosing] == lo {
				p += 1000
			}
			if v[RewardClosing] < v[RewardPrevious] {
				p += 100
			}
			if v[RewardEarned] > v[RewardPrevious] {
				p += 200
			}
			if v[RewardEarned] == hi {
				p += 100
			}
			p += v[RewardRedeemed]
			if v[RewardEarned] == 0 {
				p += 10
			}
			if v[RewardClosing] != hi {
				p += 5
			}
			return p
		},
		TieBreak: func(v []int64) []int64 {
			return []int64{v[RewardRedeemed], -v[RewardEarned], -v[RewardClosing]}
		},
	}
}

// RewardsOf converts a reward balance candidate.
func RewardsOf(c Candidate) common.RewardExtraction {
	return common.RewardExtraction{
		Closing:  c.Values[RewardClosing],
		Earned:   c.Values[RewardEarned],
		Previous: common.Int64Ptr(c.Values[RewardPrevious]),
		Redeemed: common.Int64Ptr(c.Values[RewardRedeemed]),
	}
}

// Reward table roles (five-column template).
const (
	TableOpening = iota
	TableEarned
	TableDisbursed
	TableAdjusted
	TableClosing
)

// RewardTable balances opening + earned - disbursed - adjusted == closing.
func RewardTable() Problem {
	return Problem{
		Roles: []string{"opening", "earned", "disbursed", "adjusted", "closing"},
		Residual: func(v []int64) int64 {
			return v[TableOpening] + v[TableEarned] - v[TableDisbursed] - v[TableAdjusted] - v[TableClosing]
		},
		Penalty: func(c Candidate, group []int64) int64 {
			lo, hi := minMax(group)
			v := c.Values
			var p int64
			if v[TableClosing] == lo && lo < hi {
				p += 1000
			}
			if v[TableEarned] > v[TableOpening] && v[TableOpening] > 0 {
				p += 200
			}
			if v[TableClosing] != hi {
				p += 5
			}
			p += 5 * c.Displacement()
			return p
		},
		TieBreak: func(v []int64) []int64 {
			return []int64{v[TableDisbursed] + v[TableAdjusted], -v[TableClosing]}
		},
	}
}

// TableRewardsOf folds disbursed and adjusted into redeemed.
func TableRewardsOf(c Candidate) common.RewardExtraction {
	return common.RewardExtraction{
		Closing:  c.Values[TableClosing],
		Earned:   c.Values[TableEarned],
		Previous: common.Int64Ptr(c.Values[TableOpening]),
		Redeemed: common.Int64Ptr(c.Values[TableDisbursed] + c.Values[TableAdjusted]),
	}
}
