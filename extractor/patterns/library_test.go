package patterns

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEveryBank(t *testing.T) {
	lib, err := Default()
	require.NoError(t, err)

	assert.Equal(t, []string{"amex", "hdfc", "maybank", "sbi"}, lib.Banks())
	assert.NotEmpty(t, lib.Generic().Patterns(CardNumber))
	assert.NotEmpty(t, lib.Generic().Patterns(Transaction))
	assert.NotNil(t, lib.Set("hdfc").Pattern(TxnDateLine))
	assert.Equal(t, []string{"January 2", "Jan 2"}, lib.Set("amex").RowLayouts)
}

func TestDefault_DetectorOrder(t *testing.T) {
	lib := MustDefault()

	var banks []string
	for _, d := range lib.Detector() {
		banks = append(banks, d.Bank)
		assert.NotEmpty(t, d.Patterns, d.Bank)
	}
	assert.Equal(t, []string{"hdfc", "icici", "sbi", "maybank", "amex", "citi", "chase"}, banks)
}

func TestDateLayouts_BankFirstThenGeneric(t *testing.T) {
	lib := MustDefault()

	layouts := lib.DateLayouts("sbi")
	require.NotEmpty(t, layouts)
	assert.Equal(t, "2 Jan 06", layouts[0])
	assert.Contains(t, layouts, "2-Jan-06")

	seen := map[string]int{}
	for _, l := range layouts {
		seen[l]++
		assert.Equal(t, 1, seen[l], "duplicate layout %q", l)
	}
}

func TestSet_UnknownBankIsEmpty(t *testing.T) {
	lib := MustDefault()

	s := lib.Set("icici")
	assert.Nil(t, s.Patterns(CardNumber))
	assert.Nil(t, s.Pattern(CardNumber))
	assert.Equal(t, lib.Generic().DateLayouts, lib.DateLayouts("icici"))
}

func TestLoad_UserOverrideReplacesList(t *testing.T) {
	v, err := NewViper()
	require.NoError(t, err)

	override := `
statement:
  hdfc:
    patterns:
      card_number:
        - 'Card Ref (?P<value>\d{4})'
`
	require.NoError(t, v.MergeConfig(bytes.NewBufferString(override)))

	lib, err := Load(v)
	require.NoError(t, err)

	cards := lib.Set("hdfc").Patterns(CardNumber)
	require.Len(t, cards, 1)
	assert.Equal(t, `Card Ref (?P<value>\d{4})`, cards[0].String())
	// untouched keys survive the merge
	assert.NotEmpty(t, lib.Set("hdfc").Patterns(SectionStart))
	assert.NotEmpty(t, lib.Set("hdfc").DateLayouts)
}

func TestLoad_RejectsInvalidPattern(t *testing.T) {
	v, err := NewViper()
	require.NoError(t, err)

	require.NoError(t, v.MergeConfig(bytes.NewBufferString(`
statement:
  sbi:
    patterns:
      reward_group:
        - '(\d+'
`)))

	_, err = Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement.sbi.patterns.reward_group")
}
