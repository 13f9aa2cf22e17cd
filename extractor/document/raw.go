package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	lpdf "github.com/ledongthuc/pdf"
)

// RawDecoder decodes the whole content stream with ledongthuc/pdf. Its text
// order differs from the row-based backend, which is what makes it useful
// as a second opinion.
type RawDecoder struct{}

func (RawDecoder) DecodeText(data []byte, password string) (text string, err error) {
	if !IsPDF(data) {
		return "", common.ExtractionError(common.CodeEmptyOrCorrupt, "not a pdf document", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = common.ExtractionError(common.CodeEmptyOrCorrupt, fmt.Sprintf("pdf decoder crashed: %v", r), nil)
		}
	}()

	r, err := lpdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), passwordOnce(password))
	if err != nil {
		return "", classify(err, password)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", classify(err, password)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", classify(err, password)
	}
	return strings.TrimSpace(string(b)), nil
}
