package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docfind/internal/doctree"
	"golang.org/x/net/html"
)

// CSVParser renders CSV files as a single table; the first row is the header.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := strings.TrimSuffix(filename, ".csv")
	if len(records) == 0 {
		return newDocument(title, "")
	}

	var body strings.Builder
	body.WriteString("<table><thead><tr>")
	for _, h := range records[0] {
		body.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	body.WriteString("</tr></thead><tbody>")
	for i, row := range records[1:] {
		// 1-indexed source line, header skipped.
		fmt.Fprintf(&body, `<tr id="row-%d">`, i+2)
		for _, cell := range row {
			body.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		body.WriteString("</tr>")
	}
	body.WriteString("</tbody></table>")

	return newDocument(title, body.String())
}
