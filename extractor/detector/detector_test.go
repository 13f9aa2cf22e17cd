package detector

import (
	"sync"
	"testing"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	d := New(patterns.MustDefault())

	tests := []struct {
		text string
		want string
	}{
		{"Welcome to HDFC Bank credit card statement", "hdfc"},
		{"visit www.hdfcbank.com", "hdfc"},
		{"American Express Membership Rewards", "amex"},
		{"SBI Card ELITE", "sbi"},
		{"ICICI Bank Amazon Pay card", "icici"},
		{"JPMorgan Chase Bank", "chase"},
		{"citibank rewards", "citi"},
		{"Malayan Banking Berhad (3813-K)", "maybank"},
		{"MAYBANK 2 PLAT AMEX : 3791 000000 01005", "maybank"},
		{"Some Credit Union", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Detect(tt.text), tt.text)
	}
}

func TestDetect_PriorityOrder(t *testing.T) {
	d := New(patterns.MustDefault())

	// the first bank in priority order wins when several match
	assert.Equal(t, "hdfc", d.Detect("HDFC Bank statement, paid via American Express"))
	assert.Equal(t, "sbi", d.Detect("State Bank of India and AMEX"))
}

func TestDetectElements(t *testing.T) {
	d := New(patterns.MustDefault())
	elements := []common.Element{
		{Kind: common.TextElement, Text: "Statement"},
		{Kind: common.PageBreak},
		{Kind: common.TableElement, Rows: [][]string{{"Issued by", "American Express"}}},
	}
	assert.Equal(t, "amex", d.DetectElements(elements))
}

func TestSupportedBanks(t *testing.T) {
	d := New(patterns.MustDefault())
	assert.Equal(t, []string{"hdfc", "icici", "sbi", "maybank", "amex", "citi", "chase"}, d.SupportedBanks())
}

func TestAddPattern(t *testing.T) {
	d := New(patterns.MustDefault())

	require.NoError(t, d.AddPattern("hdfc", `Millennia\s+Card`))
	assert.Equal(t, "hdfc", d.Detect("your MILLENNIA CARD statement"))

	require.NoError(t, d.AddPattern("kotak", `Kotak\s+Mahindra`))
	assert.Equal(t, "kotak", d.Detect("Kotak Mahindra Bank"))
	banks := d.SupportedBanks()
	assert.Equal(t, "kotak", banks[len(banks)-1])

	assert.Error(t, d.AddPattern("hdfc", `(unclosed`))
}

func TestDetect_Concurrent(t *testing.T) {
	d := New(patterns.MustDefault())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "sbi", d.Detect("sbicard.com"))
			assert.NoError(t, d.AddPattern("yes", `YES\s+Bank`))
		}()
	}
	wg.Wait()
	assert.Equal(t, "yes", d.Detect("YES Bank"))
}
