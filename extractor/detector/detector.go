// Package detector identifies the issuing bank of a statement from its text.
package detector

import (
	"regexp"
	"strings"
	"sync"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Detector checks banks in priority order; the first bank with any matching
// pattern wins. It is safe for concurrent use.
type Detector struct {
	mu      sync.RWMutex
	entries []patterns.DetectorEntry
	log     *logrus.Entry
}

func New(lib *patterns.Library) *Detector {
	return &Detector{
		entries: lib.Detector(),
		log:     logrus.WithField("component", "detector"),
	}
}

// Detect returns the bank code, or "" when no bank matches.
func (d *Detector) Detect(text string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.entries {
		for _, re := range e.Patterns {
			if re.MatchString(text) {
				d.log.WithFields(logrus.Fields{"bank": e.Bank, "pattern": re.String()}).Debug("bank detected")
				return e.Bank
			}
		}
	}
	d.log.Debug("no bank detected")
	return ""
}

// DetectElements linearizes elements and detects on the result.
func (d *Detector) DetectElements(elements []common.Element) string {
	return d.Detect(common.Linearize(elements))
}

// SupportedBanks lists bank codes in priority order.
func (d *Detector) SupportedBanks() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	banks := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		banks = append(banks, e.Bank)
	}
	return banks
}

// AddPattern appends a case-insensitive pattern to bank. A bank not yet
// known is added at the lowest priority.
func (d *Detector) AddPattern(bank, pattern string) error {
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.Wrapf(err, "invalid detection pattern for %s", bank)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.entries {
		if d.entries[i].Bank == bank {
			d.entries[i].Patterns = append(d.entries[i].Patterns, re)
			return nil
		}
	}
	d.entries = append(d.entries, patterns.DetectorEntry{Bank: bank, Patterns: []*regexp.Regexp{re}})
	return nil
}
