package hdfc

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `HDFC Bank Credit Cards
Paytm HDFC Bank Select Credit Card Statement
Name : JOHN DOE
Card No: 4893XXXXXXXXXX3777
Statement Date: 13/07/2025
Payment Due Date: 02/08/2025
Account Summary
Previous Statement Dues Payments/Credits Received Purchases/Debit Finance Charges Total Dues
0.00 0.00 5,153.98 0.00 5,154.00
Minimum Amount Due: 260.00
Domestic Transactions
DATE & TIME TRANSACTION DESCRIPTION REWARDS AMOUNT PI
13/06/2025| 10:15
AMAZON PAY INDIA
+ 12
C 1,234.00
14/06/2025| 18:02 SWIGGY BANGALORE C 456.50
20/06/2025| 09:00
NETBANKING PAYMENT RECEIVED
+ C 5,154.00
Reward Points Summary
Opening Balance Earned Disbursed Adjusted/Lapsed Closing Balance
1,200 340 500 40 1,000
`

func parser() *Parser {
	return New(patterns.MustDefault())
}

func TestParse_EndToEnd(t *testing.T) {
	s, err := common.Parse(parser(), common.NewTextDocument(statement))
	require.NoError(t, err)

	assert.Equal(t, "3777", s.CardLastFour)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.July, Day: 1}, s.StatementMonth)
	assert.Equal(t, int64(515400), s.ClosingBalanceMinor)
	require.NotNil(t, s.AccountSummary)
	assert.Equal(t, int64(515398), s.AccountSummary.DebitsMinor)
	assert.Equal(t, int64(0), s.AccountSummary.PreviousBalanceMinor)
	require.NotNil(t, s.BankCode)
	assert.Equal(t, "hdfc", *s.BankCode)

	require.NotNil(t, s.DueDate)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.August, Day: 2}, *s.DueDate)
	require.NotNil(t, s.MinimumDueMinor)
	assert.Equal(t, int64(26000), *s.MinimumDueMinor)

	assert.Equal(t, int64(1000), s.RewardPoints)
	assert.Equal(t, int64(340), s.RewardPointsEarned)
	require.NotNil(t, s.RewardPointsRedeemed)
	assert.Equal(t, int64(540), *s.RewardPointsRedeemed)

	require.Len(t, s.Transactions, 3)
	assert.Equal(t, common.ParsedTransaction{
		Date:        civil.Date{Year: 2025, Month: time.June, Day: 13},
		Description: "AMAZON PAY INDIA",
		AmountMinor: 123400,
		Kind:        common.Debit,
	}, s.Transactions[0])
	assert.Equal(t, "SWIGGY BANGALORE", s.Transactions[1].Description)
	assert.Equal(t, "NETBANKING PAYMENT RECEIVED", s.Transactions[2].Description)
	assert.Equal(t, common.Credit, s.Transactions[2].Kind)
}

func TestCardNumber_Formats(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Card No: 4893XXXXXXXXXX3777", "3777"},
		{"Credit Card No. 5522 XXXX XXXX 0421", "0421"},
		{"Card Number: 4147-XXXX-XXXX-9012", "9012"},
		{"Card No: XXXX 5678", "5678"},
	}
	for _, tt := range tests {
		got, err := parser().CardNumber(common.NewTextDocument(tt.text))
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestStatementPeriod_Range(t *testing.T) {
	d, err := parser().StatementPeriod(common.NewTextDocument("Statement Period: 14-Jun-25 to 13-Jul-25"))
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.July, Day: 1}, d)
}

func TestClosingBalance_WithoutSummary(t *testing.T) {
	b, err := parser().ClosingBalance(common.NewTextDocument("Total Dues: 12,500.00"))
	require.NoError(t, err)
	assert.Equal(t, int64(1250000), b.ClosingMinor)
	assert.Nil(t, b.Summary)
}

func TestClosingBalance_SummaryWithUnreconcilableNumbers(t *testing.T) {
	text := "Account Summary\n1.00 10.00 100.00 1,000.00 100,000.00\nTotal Dues: 100,000.00"

	b, err := parser().ClosingBalance(common.NewTextDocument(text))
	require.NoError(t, err)
	assert.Equal(t, int64(10000000), b.ClosingMinor)
	assert.Nil(t, b.Summary)
}

func TestRewards_CompactTemplate(t *testing.T) {
	text := "Reward Points: 4,045\nOpening Earned Redeemed Balance\n3,988 57 0 4,045"

	r := parser().Rewards(common.NewTextDocument(text))
	assert.Equal(t, int64(4045), r.Closing)
	assert.Equal(t, int64(57), r.Earned)
	require.NotNil(t, r.Previous)
	assert.Equal(t, int64(3988), *r.Previous)
}

func TestRewards_CompactWithoutRow(t *testing.T) {
	r := parser().Rewards(common.NewTextDocument("Reward Points: 812"))
	assert.Equal(t, common.RewardExtraction{Closing: 812}, r)
}

func TestRewards_PartialLabels(t *testing.T) {
	text := "Reward Points Summary\nPoints\n1,000 1,200 340 500 40"

	r := parser().Rewards(common.NewTextDocument(text))
	assert.Equal(t, int64(1000), r.Closing)
	assert.Equal(t, int64(340), r.Earned)
}

func TestTransactions_WithoutSectionUsesGenericScan(t *testing.T) {
	txns := parser().Transactions(common.NewTextDocument("15/06/2025 GROCERY MART 1,234.50\n"))
	require.Len(t, txns, 1)
	assert.Equal(t, "GROCERY MART", txns[0].Description)
}

func TestTransactions_InternationalSection(t *testing.T) {
	text := `Domestic Transactions
13/06/2025 UBER INDIA C 310.00
International Transactions
15/06/2025 NETFLIX.COM USD 15.49 C 1,320.00
Important Information`

	txns := parser().Transactions(common.NewTextDocument(text))
	require.Len(t, txns, 2)
	assert.Equal(t, "NETFLIX.COM USD 15.49", txns[1].Description)
	assert.Equal(t, int64(132000), txns[1].AmountMinor)
}

func TestTransactions_ForeignAmountInDescriptionCountedOnce(t *testing.T) {
	text := `Domestic Transactions
01/06/2025| 10:00
NETFLIX USD 15.49 FX
C 1,320.00
02/06/2025| 11:00
PENDING HOLD
03/06/2025| 12:00 SWIGGY C 300.00
Important Information`

	txns := parser().Transactions(common.NewTextDocument(text))
	require.Len(t, txns, 2)
	assert.Equal(t, "NETFLIX USD 15.49 FX", txns[0].Description)
	assert.Equal(t, int64(132000), txns[0].AmountMinor)
	assert.Equal(t, "SWIGGY", txns[1].Description)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 3}, txns[1].Date)
}

func TestParse_Idempotent(t *testing.T) {
	p := parser()
	first, err := common.Parse(p, common.NewTextDocument(statement))
	require.NoError(t, err)
	second, err := common.Parse(p, common.NewTextDocument(statement))
	require.NoError(t, err)
	fresh, err := common.Parse(parser(), common.NewTextDocument(statement))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first, fresh)
}
