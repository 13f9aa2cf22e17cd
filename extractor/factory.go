package extractor

import (
	"sort"
	"strings"
	"sync"

	"github.com/aqlanhadi/stmtparse/extractor/amex"
	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/aqlanhadi/stmtparse/extractor/detector"
	"github.com/aqlanhadi/stmtparse/extractor/document"
	"github.com/aqlanhadi/stmtparse/extractor/generic"
	"github.com/aqlanhadi/stmtparse/extractor/hdfc"
	"github.com/aqlanhadi/stmtparse/extractor/maybank"
	"github.com/aqlanhadi/stmtparse/extractor/patterns"
	"github.com/aqlanhadi/stmtparse/extractor/sbi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Constructor builds a fresh grammar for one parse.
type Constructor func(lib *patterns.Library) common.Grammar

// Factory turns document bytes into a parsed statement: extract elements,
// detect the bank, pick a grammar, parse.
type Factory struct {
	lib      *patterns.Library
	backend  document.Backend
	decoder  document.Decoder
	detector *detector.Detector
	log      *logrus.Entry
	strict   bool

	mu          sync.RWMutex
	refinements map[string]Constructor
}

type Option func(*Factory)

func WithBackend(b document.Backend) Option {
	return func(f *Factory) { f.backend = b }
}

// WithDecoder sets the alternate text path. nil disables it.
func WithDecoder(d document.Decoder) Option {
	return func(f *Factory) { f.decoder = d }
}

func WithDetector(d *detector.Detector) Option {
	return func(f *Factory) { f.detector = d }
}

func WithLogger(log *logrus.Entry) Option {
	return func(f *Factory) { f.log = log }
}

// WithStrictDetection makes an undetected bank a failure instead of a
// generic parse.
func WithStrictDetection() Option {
	return func(f *Factory) { f.strict = true }
}

// NewFactory returns a factory with no refinements registered.
func NewFactory(lib *patterns.Library, opts ...Option) *Factory {
	f := &Factory{
		lib:         lib,
		backend:     document.NewAutoBackend(),
		decoder:     document.RawDecoder{},
		log:         logrus.WithField("component", "factory"),
		refinements: map[string]Constructor{},
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.detector == nil {
		f.detector = detector.New(lib)
	}
	return f
}

// NewDefaultFactory returns a factory with the built-in bank refinements.
func NewDefaultFactory(lib *patterns.Library, opts ...Option) *Factory {
	f := NewFactory(lib, opts...)
	builtin := map[string]Constructor{
		hdfc.Bank:    func(l *patterns.Library) common.Grammar { return hdfc.New(l) },
		amex.Bank:    func(l *patterns.Library) common.Grammar { return amex.New(l) },
		maybank.Bank: func(l *patterns.Library) common.Grammar { return maybank.New(l) },
		sbi.Bank:     func(l *patterns.Library) common.Grammar { return sbi.New(l) },
	}
	for bank, c := range builtin {
		f.refinements[bank] = c
	}
	return f
}

// RegisterRefinement routes bank to c, replacing any earlier registration.
func (f *Factory) RegisterRefinement(bank string, c Constructor) error {
	bank = strings.ToLower(strings.TrimSpace(bank))
	if bank == "" {
		return errors.New("bank code is required")
	}
	if c == nil {
		return errors.Errorf("nil constructor for bank %s", bank)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.refinements[bank] = c
	return nil
}

// UnregisterRefinement sends bank back to the generic grammar.
func (f *Factory) UnregisterRefinement(bank string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refinements, strings.ToLower(strings.TrimSpace(bank)))
}

func (f *Factory) RegisteredBanks() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	banks := make([]string, 0, len(f.refinements))
	for b := range f.refinements {
		banks = append(banks, b)
	}
	sort.Strings(banks)
	return banks
}

func (f *Factory) Detector() *detector.Detector { return f.detector }

// Parse is the primary entry point. password may be empty.
func (f *Factory) Parse(data []byte, password string) (*common.ParsedStatement, error) {
	doc, err := f.Document(data, password)
	if err != nil {
		return nil, err
	}
	return f.ParseDocument(doc)
}

// Document runs the extraction backend and wires the alternate decoder for
// PDF input.
func (f *Factory) Document(data []byte, password string) (*common.Document, error) {
	elements, err := f.backend.Extract(data, password)
	if err != nil {
		return nil, common.AsError(err)
	}

	var alternate func() (string, error)
	if f.decoder != nil && document.IsPDF(data) {
		alternate = func() (string, error) { return f.decoder.DecodeText(data, password) }
	}
	return common.NewDocument(elements, alternate), nil
}

// ParseElements parses already extracted elements. alternate may be nil.
func (f *Factory) ParseElements(elements []common.Element, alternate func() (string, error)) (*common.ParsedStatement, error) {
	return f.ParseDocument(common.NewDocument(elements, alternate))
}

func (f *Factory) ParseDocument(doc *common.Document) (*common.ParsedStatement, error) {
	log := f.log.WithField("run_id", uuid.NewString())

	bank := f.detector.Detect(doc.Text)
	if bank == "" && f.strict {
		log.Warn("no bank detected")
		return nil, common.New(common.CodeBankDetectionFailed, "no known bank matched the document")
	}

	grammar, refined := f.grammarFor(bank)
	log.WithFields(logrus.Fields{
		"bank":     bank,
		"refined":  refined,
		"elements": len(doc.Elements),
	}).Info("parser selected")

	statement, err := common.Parse(grammar, doc)
	if err != nil {
		log.WithError(err).Warn("parse failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"card":         statement.CardLastFour,
		"month":        statement.StatementMonth.String(),
		"transactions": len(statement.Transactions),
	}).Info("statement parsed")
	return statement, nil
}

func (f *Factory) grammarFor(bank string) (common.Grammar, bool) {
	f.mu.RLock()
	c, ok := f.refinements[bank]
	f.mu.RUnlock()
	if ok && bank != "" {
		return c(f.lib), true
	}
	return generic.New(f.lib, generic.WithBankCode(bank), generic.WithDateLayouts(f.lib.DateLayouts(bank))), false
}
