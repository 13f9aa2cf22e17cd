// Package patterns holds the per-bank regular expressions and date layouts
// the grammars are built from. The library is loaded once from viper and is
// read-only afterwards, so it can be shared by concurrent parses.
package patterns

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"sort"

	"github.com/spf13/viper"
)

//go:embed default.yaml
var DefaultYAML []byte

// Generic is the bank key of the baseline pattern set.
const Generic = "generic"

// Field names used as pattern keys.
const (
	CardNumber      = "card_number"
	StatementPeriod = "statement_period"
	StatementDate   = "statement_date"
	ClosingBalance  = "closing_balance"
	Rewards         = "rewards"
	DueDate         = "due_date"
	MinimumDue      = "minimum_due"
	Transaction     = "transaction"
	SectionStart    = "section_start"
	SectionEnd      = "section_end"
	TxnDateLine     = "txn_date_line"
	TxnDateToken    = "txn_date_token"
)

// Set is the compiled pattern set of one bank.
type Set struct {
	Bank        string
	DateLayouts []string
	RowLayouts  []string
	patterns    map[string][]*regexp.Regexp
}

// Patterns returns the prioritized patterns for field, or nil.
func (s *Set) Patterns(field string) []*regexp.Regexp {
	if s == nil {
		return nil
	}
	return s.patterns[field]
}

// Pattern returns the highest priority pattern for field, or nil.
func (s *Set) Pattern(field string) *regexp.Regexp {
	if p := s.Patterns(field); len(p) > 0 {
		return p[0]
	}
	return nil
}

// Fields lists the configured field names, sorted.
func (s *Set) Fields() []string {
	fields := make([]string, 0, len(s.patterns))
	for f := range s.patterns {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// DetectorEntry is one bank in detection priority order.
type DetectorEntry struct {
	Bank     string
	Patterns []*regexp.Regexp
}

type Library struct {
	sets     map[string]*Set
	detector []DetectorEntry
}

type rawDetector struct {
	Bank     string   `mapstructure:"bank"`
	Patterns []string `mapstructure:"patterns"`
}

type rawSet struct {
	DateLayouts []string            `mapstructure:"date_layouts"`
	RowLayouts  []string            `mapstructure:"row_layouts"`
	Patterns    map[string][]string `mapstructure:"patterns"`
}

// NewViper returns a viper instance primed with the embedded defaults.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(DefaultYAML)); err != nil {
		return nil, fmt.Errorf("reading embedded patterns: %w", err)
	}
	return v, nil
}

// Default compiles the embedded pattern library.
func Default() (*Library, error) {
	v, err := NewViper()
	if err != nil {
		return nil, err
	}
	return Load(v)
}

func MustDefault() *Library {
	lib, err := Default()
	if err != nil {
		panic(err)
	}
	return lib
}

// Load compiles the "detector" and "statement" keys of v. Any invalid
// expression fails the whole load.
func Load(v *viper.Viper) (*Library, error) {
	var detector []rawDetector
	if err := v.UnmarshalKey("detector", &detector); err != nil {
		return nil, fmt.Errorf("decoding detector patterns: %w", err)
	}
	var statement map[string]rawSet
	if err := v.UnmarshalKey("statement", &statement); err != nil {
		return nil, fmt.Errorf("decoding statement patterns: %w", err)
	}
	if _, ok := statement[Generic]; !ok {
		return nil, fmt.Errorf("pattern library has no %q set", Generic)
	}

	lib := &Library{sets: make(map[string]*Set, len(statement))}
	for _, d := range detector {
		compiled, err := compileAll(d.Patterns)
		if err != nil {
			return nil, fmt.Errorf("detector %s: %w", d.Bank, err)
		}
		lib.detector = append(lib.detector, DetectorEntry{Bank: d.Bank, Patterns: compiled})
	}
	for bank, raw := range statement {
		set := &Set{
			Bank:        bank,
			DateLayouts: raw.DateLayouts,
			RowLayouts:  raw.RowLayouts,
			patterns:    make(map[string][]*regexp.Regexp, len(raw.Patterns)),
		}
		for field, exprs := range raw.Patterns {
			compiled, err := compileAll(exprs)
			if err != nil {
				return nil, fmt.Errorf("statement.%s.patterns.%s: %w", bank, field, err)
			}
			set.patterns[field] = compiled
		}
		lib.sets[bank] = set
	}
	return lib, nil
}

func compileAll(exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// Set returns the pattern set of bank. Unknown banks get an empty set so
// callers can fall through to the generic patterns.
func (l *Library) Set(bank string) *Set {
	if s, ok := l.sets[bank]; ok {
		return s
	}
	return &Set{Bank: bank, patterns: map[string][]*regexp.Regexp{}}
}

func (l *Library) Generic() *Set {
	return l.sets[Generic]
}

// DateLayouts returns bank's layouts followed by the generic ones, without
// duplicates.
func (l *Library) DateLayouts(bank string) []string {
	seen := map[string]bool{}
	var layouts []string
	for _, s := range []*Set{l.Set(bank), l.Generic()} {
		for _, layout := range s.DateLayouts {
			if !seen[layout] {
				seen[layout] = true
				layouts = append(layouts, layout)
			}
		}
	}
	return layouts
}

// Detector returns a copy of the detection entries in priority order.
func (l *Library) Detector() []DetectorEntry {
	out := make([]DetectorEntry, len(l.detector))
	for i, d := range l.detector {
		out[i] = DetectorEntry{Bank: d.Bank, Patterns: append([]*regexp.Regexp(nil), d.Patterns...)}
	}
	return out
}

// Banks lists the banks with a pattern set, generic excluded.
func (l *Library) Banks() []string {
	var banks []string
	for b := range l.sets {
		if b != Generic {
			banks = append(banks, b)
		}
	}
	sort.Strings(banks)
	return banks
}
