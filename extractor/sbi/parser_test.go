package sbi

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `SBI Card
Credit Card Number XXXX XXXX XXXX XX95
Statement Date : 15 Jan 2026
Total Amount Due : 45,678.90
TRANSACTIONS FOR JOHN DOE
15 Dec 25 FUEL SURCHARGE WAIVER 12.50 C
15 Dec 25 IOCL FUEL STATION BANGALORE IN 1,250.00 D
16 Dec 25 SWIGGY BANGALORE IN 456.00 D
17 Dec 25 APOLLO PHARMACIES LIMI IN 1,138.82 D
18 Dec 25 AMAZON PAY IN 19 Dec 25 999.00 D
20 Dec 25 MAKEMYTRIP INDIA PVT
LTD NEW DELHI IN 5,400.00 D
22 Dec 25 PAYMENT RECEIVED 000100012345 20,000.00 C
24 Dec 25 ZOMATO LTD GURGAON IN 389.50 D
26 Dec 25 BIGBASKET BANGALORE IN 2,145.75 D
28 Dec 25 UBER INDIA SYSTEMS IN 310.00 D
02 Jan 26 NETFLIX COM MUMBAI IN 649.00 D
05 Jan 26 RELIANCE DIGITAL IN 12,999.00 D
10 Jan 26 CASHBACK CREDIT 150.00 C
Reward Points Summary
3,988 57 0 4,045
Previous Balance Earned Redeemed/Expired
/Forfeited Closing Balance Points Expiry Details
`

func parser() *Parser {
	return New(patterns.MustDefault())
}

func TestParse_EndToEnd(t *testing.T) {
	s, err := common.Parse(parser(), common.NewTextDocument(statement))
	require.NoError(t, err)

	assert.Equal(t, "XX95", s.CardLastFour)
	assert.Equal(t, civil.Date{Year: 2026, Month: time.January, Day: 1}, s.StatementMonth)
	assert.Equal(t, int64(4567890), s.ClosingBalanceMinor)
	assert.Equal(t, int64(4045), s.RewardPoints)
	assert.Equal(t, int64(57), s.RewardPointsEarned)
	require.NotNil(t, s.BankCode)
	assert.Equal(t, "sbi", *s.BankCode)

	txns := s.Transactions
	require.Len(t, txns, 13)
	assert.Equal(t, common.ParsedTransaction{
		Date:        civil.Date{Year: 2025, Month: time.December, Day: 15},
		Description: "FUEL SURCHARGE WAIVER",
		AmountMinor: 1250,
		Kind:        common.Credit,
	}, txns[0])
	assert.Equal(t, "APOLLO PHARMACIES LIMI IN", txns[3].Description)
	assert.Equal(t, int64(113882), txns[3].AmountMinor)
	assert.Equal(t, common.Debit, txns[3].Kind)
	assert.Equal(t, "AMAZON PAY IN", txns[4].Description)
	assert.Equal(t, "MAKEMYTRIP INDIA PVT LTD NEW DELHI IN", txns[5].Description)
	assert.Equal(t, common.Credit, txns[6].Kind)
	assert.Equal(t, civil.Date{Year: 2026, Month: time.January, Day: 2}, txns[10].Date)
	assert.Equal(t, "CASHBACK CREDIT", txns[12].Description)
}

func TestRewards_LabelsBeforeNumbers(t *testing.T) {
	text := "Reward Points Summary\nPrevious Balance Earned Redeemed Closing Balance\n4,045 0 3,988 57\n"

	r := parser().Rewards(common.NewTextDocument(text))
	assert.Equal(t, int64(4045), r.Closing)
	assert.Equal(t, int64(57), r.Earned)
	require.NotNil(t, r.Previous)
	assert.Equal(t, int64(3988), *r.Previous)
	require.NotNil(t, r.Redeemed)
	assert.Equal(t, int64(0), *r.Redeemed)
}

func TestRewards_IgnoresGroupsAwayFromLabels(t *testing.T) {
	text := "Credit Limit 100 200 300 400\nnothing else"

	r := parser().Rewards(common.NewTextDocument(text))
	assert.Equal(t, common.RewardExtraction{}, r)
}

func TestCardNumber(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"XXXX XXXX XXXX XX95", "XX95"},
		{"Card No. xxxx-xxxx-xxxx-xx07", "XX07"},
		{"Card ending in 4321", "4321"},
		{"Card No: 4111 XXXX XXXX 1234", "1234"},
	}
	for _, tt := range tests {
		got, err := parser().CardNumber(common.NewTextDocument(tt.text))
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestStatementPeriod_Range(t *testing.T) {
	d, err := parser().StatementPeriod(common.NewTextDocument("Statement Period: 16/11/2025 to 15/12/2025"))
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.December, Day: 1}, d)
}

func TestTransactions_PrefersAlternateWithMoreRows(t *testing.T) {
	primary := "15 Dec 25 FUEL SURCHARGE WAIVER 12.50 C\n"
	alternate := primary + "16 Dec 25 SWIGGY BANGALORE IN 456.00 D\n"

	txns := parser().Transactions(common.NewTextDocument(primary).WithAlternateText(alternate))
	require.Len(t, txns, 2)
	assert.Equal(t, "SWIGGY BANGALORE IN", txns[1].Description)
}

func TestTransactions_ReplacesCorruptPrimary(t *testing.T) {
	primary := "15 Dec 25 TO 12.50 C\n16 Dec 25 TO 456.00 D\n"
	alternate := "15 Dec 25 FUEL SURCHARGE WAIVER 12.50 C\n16 Dec 25 SWIGGY BANGALORE IN 456.00 D\n"

	txns := parser().Transactions(common.NewTextDocument(primary).WithAlternateText(alternate))
	require.Len(t, txns, 2)
	assert.Equal(t, "FUEL SURCHARGE WAIVER", txns[0].Description)
}

func TestTransactions_WholeTextWhenNewlinesAreLost(t *testing.T) {
	text := "TRANSACTIONS 15 Dec 25 SWIGGY 456.00 D 16 Dec 25 ZOMATO 389.50 D"

	txns := parser().Transactions(common.NewTextDocument(text))
	require.Len(t, txns, 2)
	assert.Equal(t, "SWIGGY", txns[0].Description)
	assert.Equal(t, "ZOMATO", txns[1].Description)
}

func TestCleanMerchant(t *testing.T) {
	p := parser()
	assert.Equal(t, "AMAZON PAY IN", p.cleanMerchant("AMAZON PAY IN 19 Dec 25"))
	assert.Equal(t, "ZOMATO", p.cleanMerchant("ZOMATO 20 Dec 25 SWIGGY"))
	assert.Equal(t, "19 Dec 25", p.cleanMerchant("19 Dec 25"))
	assert.Equal(t, "UBER", p.cleanMerchant("  UBER  "))
}

func TestParse_Idempotent(t *testing.T) {
	p := parser()
	first, err := common.Parse(p, common.NewTextDocument(statement))
	require.NoError(t, err)
	second, err := common.Parse(p, common.NewTextDocument(statement))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
