package common

import (
	"regexp"

	"cloud.google.com/go/civil"
)

// Submatch returns the named group of m, or "" when re has no such group or
// it did not participate.
func Submatch(re *regexp.Regexp, m []string, name string) string {
	if m == nil {
		return ""
	}
	i := re.SubexpIndex(name)
	if i < 0 || i >= len(m) {
		return ""
	}
	return m[i]
}

// value picks the "value" group, else the first group, else the whole match.
func value(re *regexp.Regexp, m []string) string {
	if v := Submatch(re, m, "value"); v != "" {
		return v
	}
	if len(m) > 1 && m[1] != "" {
		return m[1]
	}
	return m[0]
}

// FirstMatch applies patterns in priority order and returns the submatches of
// the first one that hits, along with the pattern.
func FirstMatch(patterns []*regexp.Regexp, text string) (*regexp.Regexp, []string) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return re, m
		}
	}
	return nil, nil
}

// FirstSubmatch is FirstMatch reduced to the captured value.
func FirstSubmatch(patterns []*regexp.Regexp, text string) (string, bool) {
	re, m := FirstMatch(patterns, text)
	if re == nil {
		return "", false
	}
	return value(re, m), true
}

// EachSubmatch yields the captured value of every pattern that matches, in
// priority order, until fn returns false.
func EachSubmatch(patterns []*regexp.Regexp, text string, fn func(string) bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if !fn(value(re, m)) {
				return
			}
		}
	}
}

// FindDate returns nil when no pattern matches and a DateParseError when a
// match cannot be normalized.
func FindDate(patterns []*regexp.Regexp, layouts []string, text string) (*civil.Date, error) {
	token, ok := FirstSubmatch(patterns, text)
	if !ok {
		return nil, nil
	}
	d, err := ParseDate(layouts, token)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindAmount returns nil when no pattern matches and an AmountParseError when
// a match cannot be normalized.
func FindAmount(patterns []*regexp.Regexp, text string) (*int64, error) {
	token, ok := FirstSubmatch(patterns, text)
	if !ok {
		return nil, nil
	}
	v, err := ParseAmountMinor(token)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var nonDigitRegex = regexp.MustCompile(`\D`)

// LastDigits strips everything but digits and keeps the trailing n. ok is
// false when fewer than n digits remain.
func LastDigits(s string, n int) (string, bool) {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if len(digits) < n {
		return "", false
	}
	return digits[len(digits)-n:], true
}
