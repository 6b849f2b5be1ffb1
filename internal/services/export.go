package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"eventlottery/internal/domain"
)

var rosterHeaders = []string{"Status", "Position", "Entrant ID", "Name", "Email", "Phone"}

type rosterRow struct {
	Status   string
	Position int
	Entrant  *domain.Entrant
}

func (r rosterRow) values() []string {
	return []string{
		r.Status,
		strconv.Itoa(r.Position),
		strconv.Itoa(r.Entrant.ID),
		r.Entrant.Profile.Name,
		r.Entrant.Profile.Email,
		r.Entrant.Profile.Phone,
	}
}

type rosterExporter struct {
	events domain.EventService
}

// NewRosterExporter returns a RosterExporter that lists confirmed entrants followed by
// the waitlist in queue order.
func NewRosterExporter(events domain.EventService) domain.RosterExporter {
	return &rosterExporter{events: events}
}

func (e *rosterExporter) ExportRoster(ctx context.Context, eventID int, format domain.ExportFormat, w io.Writer) error {
	switch format {
	case domain.ExportCSV, domain.ExportXLSX, domain.ExportPDF:
	default:
		return fmt.Errorf("export format %q: %w", format, domain.ErrInvalidInput)
	}
	ev, err := e.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	roster, err := e.events.GetRoster(ctx, eventID)
	if err != nil {
		return err
	}
	waitlist, err := e.events.GetWaitlist(ctx, eventID)
	if err != nil {
		return err
	}
	rows := make([]rosterRow, 0, len(roster)+len(waitlist))
	for i, en := range roster {
		rows = append(rows, rosterRow{Status: "confirmed", Position: i + 1, Entrant: en})
	}
	for i, en := range waitlist {
		rows = append(rows, rosterRow{Status: "waitlisted", Position: i + 1, Entrant: en})
	}

	switch format {
	case domain.ExportXLSX:
		return exportRosterExcel(w, rows)
	case domain.ExportPDF:
		return exportRosterPDF(w, ev.Info.Name, rows)
	default:
		return exportRosterCSV(w, rows)
	}
}

func exportRosterCSV(w io.Writer, rows []rosterRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rosterHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(r.values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportRosterExcel(w io.Writer, rows []rosterRow) error {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Roster"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]any, len(rosterHeaders))
	for i, h := range rosterHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Status, r.Position, r.Entrant.ID, r.Entrant.Profile.Name, r.Entrant.Profile.Email, r.Entrant.Profile.Phone}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func exportRosterPDF(w io.Writer, title string, rows []rosterRow) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title+" Roster")
	pdf.Ln(15)

	widths := []float64{25, 20, 20, 45, 50, 30}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range rosterHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, r := range rows {
		for i, v := range r.values() {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
