package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ppiankov/docketscan/internal/model"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RenderRecords prints records in export column order
func RenderRecords(w io.Writer, records []*model.CaseRecord) {
	t := newTable(w)

	header := make(table.Row, len(model.ExportHeader))
	for i, h := range model.ExportHeader {
		header[i] = h
	}
	t.AppendHeader(header)

	for _, record := range records {
		row := record.Row()
		cells := make(table.Row, len(row))
		for i, v := range row {
			cells[i] = v
		}
		t.AppendRow(cells)
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(records)})
	t.Render()
}

// RenderCandidates prints phone candidates with their display similarity
func RenderCandidates(w io.Writer, candidates []model.PhoneCandidate) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Address", "Phone Numbers", "Similarity"})

	for i, c := range candidates {
		t.AppendRow(table.Row{
			i + 1,
			c.Name,
			c.Address,
			strings.Join(c.PhoneNumbers, "\n"),
			fmt.Sprintf("%.2f", c.Similarity),
		})
	}
	t.Render()
}

// RenderFailures prints records whose enrichment failed
func RenderFailures(w io.Writer, outcomes []model.EnrichOutcome) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Docket", "Attempts", "Error"})

	for _, o := range outcomes {
		if o.OK() {
			continue
		}
		t.AppendRow(table.Row{o.Record.Docket, o.Attempts, o.Err.Error()})
	}
	t.Render()
}
