package common

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestCleanDecimal_SimpleNumber(t *testing.T) {
	result, err := CleanDecimal("123.45")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "123.45" {
		t.Errorf("Expected '123.45', got '%s'", result.String())
	}
}

func TestCleanDecimal_WithCommas(t *testing.T) {
	result, err := CleanDecimal("1,23,456.78")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "123456.78" {
		t.Errorf("Expected '123456.78', got '%s'", result.String())
	}
}

func TestCleanDecimal_WithCurrencySymbol(t *testing.T) {
	for _, in := range []string{"₹1,234.56", "$1,234.56", "Rs. 1,234.56", "INR 1,234.56", "C 1,234.56"} {
		result, err := CleanDecimal(in)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", in, err)
		}
		if result.String() != "1234.56" {
			t.Errorf("Expected '1234.56' for %q, got '%s'", in, result.String())
		}
	}
}

func TestCleanDecimal_WithSuffix(t *testing.T) {
	for _, in := range []string{"100.00CR", "100.00 Cr", "100.00 DR", "Cr 100.00"} {
		result, err := CleanDecimal(in)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", in, err)
		}
		if result.String() != "100" {
			t.Errorf("Expected '100' for %q, got '%s'", in, result.String())
		}
	}
}

func TestCleanDecimal_NegativeForms(t *testing.T) {
	for _, in := range []string{"-123.45", "123.45-", "(123.45)", "-$123.45"} {
		result, err := CleanDecimal(in)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", in, err)
		}
		if result.String() != "123.45" {
			t.Errorf("Expected magnitude '123.45' for %q, got '%s'", in, result.String())
		}
		if !IsNegativeAmount(in) {
			t.Errorf("Expected %q to be detected as negative", in)
		}
	}
}

func TestCleanDecimal_EmptyString(t *testing.T) {
	_, err := CleanDecimal("")
	if !errors.Is(err, &Error{Code: CodeAmountParseFailed}) {
		t.Errorf("Expected amount parse error, got %v", err)
	}
}

func TestCleanDecimal_NoNumbers(t *testing.T) {
	_, err := CleanDecimal("ABC")
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if e.Code != CodeAmountParseFailed || e.Token != "ABC" {
		t.Errorf("Expected amount_parse_failed for 'ABC', got %s %q", e.Code, e.Token)
	}
}

func TestParseAmountMinor_Truncates(t *testing.T) {
	cases := map[string]int64{
		"5,154.00":   515400,
		"5,153.98":   515398,
		"0.00":       0,
		"12.999":     1299,
		"1,00,000":   10000000,
		"₹ 62,914.00": 6291400,
	}
	for in, want := range cases {
		got, err := ParseAmountMinor(in)
		if err != nil {
			t.Fatalf("Unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Errorf("Expected %d for %q, got %d", want, in, got)
		}
	}
}

func TestFixDateYear_SameYear(t *testing.T) {
	txDate := civil.Date{Year: 2024, Month: time.November, Day: 15}
	stmtDate := civil.Date{Year: 2024, Month: time.November, Day: 30}

	result, err := FixDateYear(txDate, stmtDate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result != txDate {
		t.Errorf("Expected %s, got %s", txDate, result)
	}
}

func TestFixDateYear_PreviousYear(t *testing.T) {
	// Transaction in December, statement in January
	txDate := civil.Date{Year: 0, Month: time.December, Day: 15}
	stmtDate := civil.Date{Year: 2024, Month: time.January, Day: 31}

	result, err := FixDateYear(txDate, stmtDate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Year != 2023 {
		t.Errorf("Expected year 2023, got %d", result.Year)
	}
	if result.Month != time.December || result.Day != 15 {
		t.Errorf("Expected Dec 15, got %s", result)
	}
}

func TestFixDateYear_CurrentYear(t *testing.T) {
	txDate := civil.Date{Year: 0, Month: time.October, Day: 20}
	stmtDate := civil.Date{Year: 2024, Month: time.November, Day: 30}

	result, err := FixDateYear(txDate, stmtDate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Year != 2024 {
		t.Errorf("Expected year 2024, got %d", result.Year)
	}
}

func TestFixDateYear_SameMonth(t *testing.T) {
	txDate := civil.Date{Year: 0, Month: time.November, Day: 10}
	stmtDate := civil.Date{Year: 2024, Month: time.November, Day: 30}

	result, err := FixDateYear(txDate, stmtDate)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Year != 2024 || result.Month != time.November {
		t.Errorf("Expected November 2024, got %s", result)
	}
}

func TestFixDateYear_LeapDayInCommonYear(t *testing.T) {
	txDate := civil.Date{Year: 0, Month: time.February, Day: 29}

	_, err := FixDateYear(txDate, civil.Date{Year: 2025, Month: time.March, Day: 13})
	if !errors.Is(err, &Error{Code: CodeDateParseFailed}) {
		t.Errorf("Expected date_parse_failed, got %v", err)
	}

	result, err := FixDateYear(txDate, civil.Date{Year: 2024, Month: time.March, Day: 13})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != (civil.Date{Year: 2024, Month: time.February, Day: 29}) {
		t.Errorf("Expected 2024-02-29, got %s", result)
	}
}

func TestParseDate_ValidDate(t *testing.T) {
	result, err := ParseDate([]string{"2-Jan-06", "2/1/2006"}, "15/11/2024")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := civil.Date{Year: 2024, Month: time.November, Day: 15}
	if result != want {
		t.Errorf("Expected %s, got %s", want, result)
	}
}

func TestParseDate_CollapsesWhitespace(t *testing.T) {
	result, err := ParseDate([]string{"2 Jan 06"}, "  15   Dec\n25 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != (civil.Date{Year: 2025, Month: time.December, Day: 15}) {
		t.Errorf("Expected 2025-12-15, got %s", result)
	}
}

func TestParseDate_InvalidDate(t *testing.T) {
	for _, in := range []string{"invalid", "99/99/9999", "31/02/2025"} {
		_, err := ParseDate([]string{"2/1/2006", "2/1/06"}, in)
		var e *Error
		if !errors.As(err, &e) {
			t.Fatalf("Expected *Error for %q, got %v", in, err)
		}
		if e.Code != CodeDateParseFailed || e.Token != in {
			t.Errorf("Expected date_parse_failed with token %q, got %s %q", in, e.Code, e.Token)
		}
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(civil.Date{Year: 2025, Month: time.July, Day: 13})
	if got != (civil.Date{Year: 2025, Month: time.July, Day: 1}) {
		t.Errorf("Expected 2025-07-01, got %s", got)
	}
}
