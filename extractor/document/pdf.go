package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aqlanhadi/stmtparse/extractor/common"
	"github.com/dslipak/pdf"
	"github.com/sirupsen/logrus"
)

// PDFBackend reads text row by row with dslipak/pdf. Each row becomes a
// text element and every page is closed by a page break.
type PDFBackend struct{}

func (PDFBackend) Extract(data []byte, password string) (elements []common.Element, err error) {
	if len(data) == 0 {
		return nil, common.ExtractionError(common.CodeEmptyOrCorrupt, "document is empty", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			elements = nil
			err = common.ExtractionError(common.CodeEmptyOrCorrupt, fmt.Sprintf("pdf reader crashed: %v", r), nil)
		}
	}()

	r, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), passwordOnce(password))
	if err != nil {
		return nil, classify(err, password)
	}

	numPages := r.NumPage()
	elements = make([]common.Element, 0, numPages*100)
	text := 0
	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			logrus.WithError(err).WithField("page", no).Warn("error getting text from page")
			continue
		}

		for _, row := range rows {
			var builder strings.Builder
			builder.Grow(len(row.Content) * 20)
			for i, t := range row.Content {
				builder.WriteString(t.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}
			if builder.Len() > 0 {
				elements = append(elements, common.Element{Kind: common.TextElement, Text: builder.String()})
				text += builder.Len()
			}
		}
		elements = append(elements, common.Element{Kind: common.PageBreak})
	}

	if text == 0 {
		return nil, common.ExtractionError(common.CodeEmptyOrCorrupt, "document has no extractable text", nil)
	}
	return elements, nil
}
