package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/docketscan/internal/model"
)

const (
	minResultCells = 5 // Rows with fewer cells are headers or separators
	nameCell       = 3
	docketCell     = 4
)

// ParseResultsTable converts the property search results table into case
// records in row order. A missing table yields no records and no error: an
// empty search and a page without the table look the same at this layer.
func ParseResultsTable(source string, tableID string) ([]*model.CaseRecord, error) {
	doc, err := parseDocument(source)
	if err != nil {
		return nil, err
	}

	table := doc.Find(fmt.Sprintf(`table[id=%q]`, tableID)).First()
	if table.Length() == 0 {
		return []*model.CaseRecord{}, nil
	}

	records := []*model.CaseRecord{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if record := parseResultRow(row); record != nil {
			records = append(records, record)
		}
	})

	return records, nil
}

// parseResultRow extracts a record from one table row, or nil when the row
// does not describe a case
func parseResultRow(row *goquery.Selection) *model.CaseRecord {
	cells := row.Find("td")
	if cells.Length() < minResultCells {
		return nil
	}

	anchor := cells.Eq(docketCell).Find("a").First()
	if anchor.Length() == 0 {
		return nil
	}

	name := strings.TrimSpace(cells.Eq(nameCell).Text())
	docket := strings.TrimSpace(anchor.Text())
	if name == "" || docket == "" {
		return nil
	}

	return model.NewCaseRecord(name, docket)
}

// NoResultsMessage returns the site's status label text (e.g., "No records
// found"), or "" when the label is absent
func NoResultsMessage(source string, selector string) string {
	doc, err := parseDocument(source)
	if err != nil {
		return ""
	}
	text, _ := firstText(doc.Selection, selector)
	return text
}
