// Package pdftext turns PDF bytes into plain text.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	dErrors "invoiceguard/pkg/domain-errors"
)

const extractionFailed = "Failed to extract text from PDF document"

// Extractor reads the text layer of a PDF. Pages are joined with a newline so
// an IBAN never spans a page break.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document text. A document without a text layer yields
// "" and no error.
func (e *Extractor) Extract(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", dErrors.New(dErrors.CodeExtraction, extractionFailed+": empty document")
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = dErrors.Wrap(fmt.Errorf("pdf parser panic: %v", r), dErrors.CodeExtraction, extractionFailed)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeExtraction, extractionFailed)
	}

	var sb strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeExtraction, extractionFailed)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
