package report

import (
	"fmt"
	"io"
	"time"

	duct "Ductsizer/internal/calc/duct"

	"github.com/phpdave11/gofpdf"
)

// Meta is the report header.
type Meta struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

// column widths in mm: option, ok, size, AR, velocity, dp, De
var columnWidths = []float64{16, 12, 32, 18, 28, 28, 24}

// WritePDF renders resp as an A4 report.
func WritePDF(w io.Writer, meta Meta, resp duct.Response, date time.Time) error {
	if meta.Title == "" {
		meta.Title = "Duct Sizing Report"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Project: %s", meta.Project)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", date.Format("2006-01-02")))
	pdf.Ln(10)

	l := resp.Labels
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Design basis")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Airflow Q = %g %s", resp.Q, l.Flow)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Target pressure drop = %g %s", resp.DP, l.PressureDrop)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Ideal square duct: %g x %g %s", resp.SquareSide, resp.SquareSide, l.Length)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Recommended rectangular sizes")
	pdf.Ln(8)

	if len(resp.Rows) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.Cell(0, 6, "No suitable rectangular duct sizes found.")
		pdf.Ln(8)
	} else {
		writeTable(pdf, tr, resp)
	}

	if meta.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(meta.Notes), "", "L", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, fmt.Sprintf(
		"Rows marked yes have aspect ratio between %.0f and %.0f. Sizes are rounded up to a %d mm grid.",
		duct.MinAspectRatio, duct.MaxAspectRatio, duct.GridMM), "", "L", false)

	return pdf.Output(w)
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, resp duct.Response) {
	l := resp.Labels
	headers := []string{
		"Option", "OK",
		fmt.Sprintf("W x H (%s)", l.Length),
		"AR",
		fmt.Sprintf("V (%s)", l.Velocity),
		fmt.Sprintf("dp (%s)", l.PressureDrop),
		fmt.Sprintf("De (%s)", l.Length),
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, cw := range columnWidths {
		pdf.CellFormat(cw, 7, tr(headers[i]), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(212, 237, 218)
	for _, row := range resp.Rows {
		ok := "no"
		if row.Valid {
			ok = "yes"
		}
		cells := []string{
			fmt.Sprintf("%d", row.Option),
			ok,
			row.Size,
			fmt.Sprintf("%.2f", row.AspectRatio),
			formatVelocity(row.Velocity, resp),
			fmt.Sprintf("%.3f", row.PressureDrop),
			formatLength(row.EquivalentDiameter, resp),
		}
		for i, cw := range columnWidths {
			pdf.CellFormat(cw, 6, tr(cells[i]), "1", 0, "C", row.Valid, 0, "")
		}
		pdf.Ln(-1)
	}
}
