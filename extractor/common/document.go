package common

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

type ElementKind string

const (
	TextElement  ElementKind = "text"
	TableElement ElementKind = "table"
	PageBreak    ElementKind = "page_break"
)

// Element is one unit of content delivered by an extraction backend.
type Element struct {
	Kind ElementKind
	Text string
	Rows [][]string
}

func (e Element) String() string {
	switch e.Kind {
	case TableElement:
		lines := make([]string, 0, len(e.Rows))
		for _, row := range e.Rows {
			lines = append(lines, strings.Join(row, " "))
		}
		return strings.Join(lines, "\n")
	case PageBreak:
		return ""
	default:
		return e.Text
	}
}

// TextElements wraps plain text as one text element per line.
func TextElements(text string) []Element {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	elements := make([]Element, 0, len(lines))
	for _, line := range lines {
		elements = append(elements, Element{Kind: TextElement, Text: line})
	}
	return elements
}

// Linearize joins the string form of every element with newlines.
func Linearize(elements []Element) string {
	parts := make([]string, 0, len(elements))
	for _, e := range elements {
		if e.Kind == PageBreak {
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "\n")
}

// Document is the fully materialized input of one parse. Text is NFKC
// normalized so ligatures and full-width digits do not defeat the patterns.
type Document struct {
	Elements []Element
	Text     string
	Lines    []string
	// Flat is Text with every whitespace run folded to a single space.
	Flat string

	alternate func() (string, error)
	altOnce   sync.Once
	altText   string
	altOK     bool
}

// NewDocument builds a document from backend elements. alternate, when not
// nil, decodes the same source through a second path; it runs at most once
// and only if a grammar asks for it.
func NewDocument(elements []Element, alternate func() (string, error)) *Document {
	text := norm.NFKC.String(Linearize(elements))
	return &Document{
		Elements:  elements,
		Text:      text,
		Lines:     strings.Split(text, "\n"),
		Flat:      CollapseSpaces(text),
		alternate: alternate,
	}
}

func NewTextDocument(text string) *Document {
	return NewDocument(TextElements(text), nil)
}

// WithAlternateText returns a copy of the document whose alternate decode
// is the given text.
func (d *Document) WithAlternateText(text string) *Document {
	return NewDocument(d.Elements, func() (string, error) { return text, nil })
}

// Alternate returns the alternate decoding of the source. ok is false when
// there is none, it failed, or it is identical to the primary text.
func (d *Document) Alternate() (string, bool) {
	d.altOnce.Do(func() {
		if d.alternate == nil {
			return
		}
		text, err := d.alternate()
		if err != nil {
			return
		}
		text = norm.NFKC.String(text)
		if strings.TrimSpace(text) == "" || text == d.Text {
			return
		}
		d.altText, d.altOK = text, true
	})
	return d.altText, d.altOK
}
