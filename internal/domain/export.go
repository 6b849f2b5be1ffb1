package domain

import (
	"context"
	"io"
)

// ExportFormat is a roster export file type.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}

// RosterExporter writes an event's roster and waitlist as a downloadable file.
type RosterExporter interface {
	ExportRoster(ctx context.Context, eventID int, format ExportFormat, w io.Writer) error
}
