package report

import (
	"fmt"
	"io"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"

	"github.com/xuri/excelize/v2"
)

const tableHeaderRow = 6

// WriteXLSX writes the candidate table as a workbook with valid rows
// highlighted.
func WriteXLSX(w io.Writer, resp duct.Response) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	l := resp.Labels

	summary := [][]any{
		{"Duct sizing"},
		{fmt.Sprintf("Q (%s)", l.Flow), resp.Q},
		{fmt.Sprintf("dp (%s)", l.PressureDrop), resp.DP},
		{fmt.Sprintf("Square side (%s)", l.Length), resp.SquareSide},
	}
	for i, row := range summary {
		if err := setRow(f, sheet, i+1, row); err != nil {
			return err
		}
	}

	header := []any{
		"Option", "OK",
		fmt.Sprintf("W×H (%s)", l.Length),
		"Aspect Ratio",
		fmt.Sprintf("Velocity (%s)", l.Velocity),
		fmt.Sprintf("dp (%s)", l.PressureDrop),
		fmt.Sprintf("De (%s)", l.Length),
	}
	if err := setRow(f, sheet, tableHeaderRow, header); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	valid, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D4EDDA"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := styleRow(f, sheet, tableHeaderRow, len(header), bold); err != nil {
		return err
	}

	for i, row := range resp.Rows {
		n := tableHeaderRow + 1 + i
		values := []any{
			row.Option,
			row.Marker,
			row.Size,
			row.AspectRatio,
			row.Velocity,
			row.PressureDrop,
			row.EquivalentDiameter,
		}
		if err := setRow(f, sheet, n, values); err != nil {
			return err
		}
		if row.Valid {
			if err := styleRow(f, sheet, n, len(values), valid); err != nil {
				return err
			}
		}
	}
	if len(resp.Rows) == 0 {
		if err := setRow(f, sheet, tableHeaderRow+1, []any{"No suitable duct sizes found."}); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func formatVelocity(v float64, resp duct.Response) string {
	if resp.Units == units.IP {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatLength(v float64, resp duct.Response) string {
	if resp.Units == units.IP {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.0f", v)
}
