// Package documenttest builds small in-memory PDFs for tests.
package documenttest

import (
	"bytes"
	"fmt"
	"strings"
)

// BuildPDF returns a valid PDF with one page per argument. Each page shows
// its text in Courier 12pt; "\n" inside a page string starts a new line.
// Calling it without arguments yields a document with zero pages.
func BuildPDF(pages ...string) []byte {
	// Object layout: 1 catalog, 2 pages tree, 3 font, then (page, content) pairs.
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, courierFont())

	for i, text := range pages {
		stream := contentStream(text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// courierFont declares explicit glyph widths so extracted runs carry their
// advance and word gaps are measurable.
func courierFont() string {
	widths := strings.TrimSpace(strings.Repeat("600 ", 126-32+1))
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths)
}

func contentStream(text string) string {
	if text == "" {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("BT /F1 12 Tf 72 720 Td")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			sb.WriteString(" 0 -16 Td")
		}
		fmt.Fprintf(&sb, " (%s) Tj", escape(line))
	}
	sb.WriteString(" ET")
	return sb.String()
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
