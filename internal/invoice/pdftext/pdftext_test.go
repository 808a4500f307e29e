package pdftext

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/iban"
	dErrors "invoiceguard/pkg/domain-errors"
)

// buildPDF renders one page per entry, each showing its text in Helvetica.
// An empty entry produces a page with an empty content stream.
func buildPDF(pages ...string) []byte {
	var objs []string
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, text := range pages {
		content := ""
		if text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, obj := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	e := New()

	t.Run("single page with IBAN", func(t *testing.T) {
		text, err := e.Extract(buildPDF("Pay to DE89 3704 0044 0532 0130 00"))
		require.NoError(t, err)
		assert.Contains(t, text, "DE89 3704 0044 0532 0130 00")
		assert.True(t, iban.Extract(text).Contains("DE89370400440532013000"))
	})

	t.Run("pages are kept apart", func(t *testing.T) {
		text, err := e.Extract(buildPDF("Invoice 42", "GB29 NWBK 6016 1331 9268 19"))
		require.NoError(t, err)
		assert.Contains(t, text, "Invoice 42")
		assert.Contains(t, text, "GB29 NWBK 6016 1331 9268 19")
		assert.Contains(t, text, "\n")
	})

	t.Run("page without text", func(t *testing.T) {
		text, err := e.Extract(buildPDF(""))
		require.NoError(t, err)
		assert.Empty(t, iban.Extract(text))
	})

	t.Run("not a PDF", func(t *testing.T) {
		_, err := e.Extract([]byte("this is not a pdf document at all"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExtraction))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := e.Extract(nil)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExtraction))
	})

	t.Run("truncated document", func(t *testing.T) {
		doc := buildPDF("Pay to DE89 3704 0044 0532 0130 00")
		_, err := e.Extract(doc[:len(doc)/2])
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExtraction))
	})
}
