// Package document extracts plain text from paginated documents (PDF).
package document

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	rpdf "rsc.io/pdf"
)

// ExtractText opens data as a PDF and returns the text of every page in page
// order, one trailing newline per page, trimmed of surrounding whitespace.
// A document without pages yields "".
func ExtractText(data []byte) (text string, err error) {
	// rsc.io/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading pdf: %v", r)
		}
	}()

	doc, err := rpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() {
			continue
		}
		sb.WriteString(pageText(p.Content().Text))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// pageText joins glyph runs in content order. A change of baseline starts a
// new line; a horizontal gap wider than a third of the font size becomes a space.
func pageText(runs []rpdf.Text) string {
	var sb strings.Builder
	for i, t := range runs {
		if i > 0 {
			prev := runs[i-1]
			switch {
			case math.Abs(t.Y-prev.Y) > lineTolerance(prev, t):
				sb.WriteString("\n")
			case t.X-(prev.X+prev.W) > t.FontSize/3 && !strings.HasSuffix(prev.S, " ") && t.S != " ":
				sb.WriteString(" ")
			}
		}
		sb.WriteString(t.S)
	}
	return sb.String()
}

func lineTolerance(a, b rpdf.Text) float64 {
	fs := math.Max(a.FontSize, b.FontSize)
	if fs <= 0 {
		return 1
	}
	return fs / 2
}
