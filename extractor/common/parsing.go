package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

var (
	amountStripper  = strings.NewReplacer("(", "", ")", "", ",", "", " ", "", "\u00a0", "")
	crdrSuffixRegex = regexp.MustCompile(`(?i)(?:cr|dr)\.?$`)
	crdrPrefixRegex = regexp.MustCompile(`(?i)^(?:cr|dr)\.?`)
	currencyRegex   = regexp.MustCompile(`^(?:(?i:rs\.?|inr|usd)|[₹$C])`)
	spaceRegex      = regexp.MustCompile(`\s+`)
)

var hundred = decimal.NewFromInt(100)

// CleanDecimal strips currency symbols, thousands separators, sign and CR/DR
// markers from an amount token and parses what is left.
func CleanDecimal(text string) (decimal.Decimal, error) {
	s := amountStripper.Replace(strings.TrimSpace(text))
	s = strings.Trim(s, "+-")
	s = crdrSuffixRegex.ReplaceAllString(s, "")
	s = crdrPrefixRegex.ReplaceAllString(s, "")
	s = strings.Trim(s, "+-")
	s = currencyRegex.ReplaceAllString(s, "")
	s = strings.Trim(s, "+-")
	if s == "" {
		return decimal.Zero, AmountParseError(text, nil)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, AmountParseError(text, err)
	}
	return amount.Abs(), nil
}

// ParseAmountMinor converts an amount token to minor units, truncating
// anything below one minor unit.
func ParseAmountMinor(text string) (int64, error) {
	amount, err := CleanDecimal(text)
	if err != nil {
		return 0, err
	}
	return amount.Mul(hundred).IntPart(), nil
}

// IsNegativeAmount reports a leading/trailing minus or accounting parentheses.
func IsNegativeAmount(text string) bool {
	return strings.Contains(text, "-") || (strings.Contains(text, "(") && strings.Contains(text, ")"))
}

// ParseDate tries each layout in order; the first one that parses wins.
func ParseDate(layouts []string, value string) (civil.Date, error) {
	token := spaceRegex.ReplaceAllString(strings.TrimSpace(value), " ")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, token); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, DateParseError(value)
}

// MonthStart returns the first day of d's month.
func MonthStart(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// FixDateYear moves a transaction date into the statement's year, or the year
// before when its month falls after the statement month. A day that does not
// exist in the chosen year (Feb 29) is an error.
// e.g. statement Jan 2024, transaction Dec -> Dec 2023
func FixDateYear(txDate civil.Date, statementDate civil.Date) (civil.Date, error) {
	if txDate.Year == statementDate.Year {
		return txDate, nil
	}
	year := statementDate.Year
	if statementDate.Month < txDate.Month {
		year--
	}
	d := civil.Date{Year: year, Month: txDate.Month, Day: txDate.Day}
	if !d.IsValid() {
		return civil.Date{}, DateParseError(fmt.Sprintf("%d %s %d", txDate.Day, txDate.Month, year))
	}
	return d, nil
}

// CollapseSpaces trims s and folds every whitespace run into one space.
func CollapseSpaces(s string) string {
	return spaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}
