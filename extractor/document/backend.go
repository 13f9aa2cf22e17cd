// Package document adapts raw statement bytes into the element stream the
// grammars consume.
package document

import (
	"bytes"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
)

// Backend extracts the primary element stream of a document.
type Backend interface {
	Extract(data []byte, password string) ([]common.Element, error)
}

// Decoder produces an independent plain-text rendering of the same bytes.
// Grammars consult it when the primary text looks incomplete.
type Decoder interface {
	DecodeText(data []byte, password string) (string, error)
}

// TextBackend treats the input as already-extracted UTF-8 text.
type TextBackend struct{}

func (TextBackend) Extract(data []byte, _ string) ([]common.Element, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, common.ExtractionError(common.CodeEmptyOrCorrupt, "document is empty", nil)
	}
	return common.TextElements(string(data)), nil
}

var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data carries a PDF header within its first kilobyte.
func IsPDF(data []byte) bool {
	return bytes.Contains(data[:min(len(data), 1024)], pdfMagic)
}

// AutoBackend sends PDFs to PDF and everything else to Text.
type AutoBackend struct {
	PDF  Backend
	Text Backend
}

func NewAutoBackend() AutoBackend {
	return AutoBackend{PDF: PDFBackend{}, Text: TextBackend{}}
}

func (a AutoBackend) Extract(data []byte, password string) ([]common.Element, error) {
	if IsPDF(data) {
		return a.PDF.Extract(data, password)
	}
	return a.Text.Extract(data, password)
}

// passwordOnce feeds the password to a PDF reader a single time; an empty
// answer tells the reader to stop retrying.
func passwordOnce(password string) func() string {
	used := false
	return func() string {
		if used {
			return ""
		}
		used = true
		return password
	}
}

// classify maps a PDF library failure onto the extraction error codes.
func classify(err error, password string) *common.Error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "encrypt") {
		if password == "" {
			return common.ExtractionError(common.CodePasswordRequired, "document is password protected", err)
		}
		return common.ExtractionError(common.CodeIncorrectPassword, "password does not open the document", err)
	}
	return common.ExtractionError(common.CodeEmptyOrCorrupt, "could not read document: "+err.Error(), err)
}
