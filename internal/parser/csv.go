package parser

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/docsect/internal/doctree"
)

// csvBatchSize is the number of data rows per generated section.
const csvBatchSize = 20

// CSVParser handles CSV files. The first row is the header; data rows are
// grouped into sections of csvBatchSize rows, each with an h2 and a table.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	title := trimExt(filename, ".csv")
	doc := &Document{Title: title}
	if len(records) == 0 {
		doc.Root = newDocument(title)
		return doc, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var sections []*doctree.Node
	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		thead := doctree.Element("thead", nil, row("th", headers))
		tbody := doctree.Element("tbody", nil)
		for _, rec := range dataRows[i:end] {
			tbody.Children = append(tbody.Children, row("td", rec))
		}

		sections = append(sections, doctree.Element("section", nil,
			// 1-indexed, skip header
			doctree.Element("h2", nil, doctree.Text(fmt.Sprintf("Rows %d-%d", i+2, end+1))),
			doctree.Element("table", nil, thead, tbody),
		))
	}

	doc.Root = newDocument(title, sections...)
	return doc, nil
}

func row(cell string, values []string) *doctree.Node {
	tr := doctree.Element("tr", nil)
	for _, v := range values {
		c := doctree.Element(cell, nil)
		if v != "" {
			c.Children = append(c.Children, doctree.Text(v))
		}
		tr.Children = append(tr.Children, c)
	}
	return tr
}
