package importer

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	batch "Ductsizer/internal/calc/batch"
	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/observability"

	"github.com/xuri/excelize/v2"
)

const (
	tool          = "import"
	MaxUploadSize = 10 << 20 // 10MB
)

type Handler struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Units   units.System
}

type ImportResult struct {
	Sheet  string       `json:"sheet"`
	Count  int          `json:"count"`
	Failed int          `json:"failed"`
	Items  []batch.Item `json:"items"`
}

func (h *Handler) Duct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	file, _, err := r.FormFile("file")
	if err != nil {
		h.reject(w, start, "file required")
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		h.reject(w, start, "invalid file")
		return
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		h.reject(w, start, "empty sheet")
		return
	}
	if dataRows(rows) > batch.MaxItems {
		h.reject(w, start, fmt.Sprintf("at most %d rows per sheet", batch.MaxItems))
		return
	}

	res := Import(sheet, rows, h.Units)
	h.Metrics.RecordCalculation(tool, duct.Outcome(nil, res.Count-res.Failed), time.Since(start))
	h.Logger.Info("sheet imported", "sheet", sheet, "rows", res.Count, "failed", res.Failed)
	duct.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) reject(w http.ResponseWriter, start time.Time, msg string) {
	h.Metrics.RecordCalculation(tool, "invalid", time.Since(start))
	duct.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// Import sizes every data row of a sheet. Row 1 is a header; Index on each
// item is the 1-based spreadsheet row.
func Import(sheet string, rows [][]string, fallback units.System) ImportResult {
	res := ImportResult{Sheet: sheet}
	for i := 1; i < len(rows); i++ {
		rowNum := i + 1
		if blank(rows[i]) {
			continue
		}
		req, err := parseDuctRow(rows[i])
		var item batch.Item
		if err != nil {
			item = batch.Item{Index: rowNum, Error: err.Error(), Status: http.StatusBadRequest}
		} else {
			item = batch.Size(rowNum, req, fallback)
		}
		if item.Error != "" {
			res.Failed++
		}
		res.Items = append(res.Items, item)
	}
	res.Count = len(res.Items)
	return res
}

func parseDuctRow(row []string) (duct.Request, error) {
	// expected: q, dp, units(optional)
	if len(row) < 2 {
		return duct.Request{}, fmt.Errorf("bad row: want q and dp")
	}
	q, err := toFloat(row[0])
	if err != nil {
		return duct.Request{}, fmt.Errorf("bad q %q", row[0])
	}
	dp, err := toFloat(row[1])
	if err != nil {
		return duct.Request{}, fmt.Errorf("bad dp %q", row[1])
	}
	sys := ""
	if len(row) > 2 {
		sys = strings.TrimSpace(row[2])
	}
	return duct.NewRequest(q, dp, sys), nil
}

// dataRows counts the non-blank rows below the header.
func dataRows(rows [][]string) int {
	n := 0
	for _, row := range rows[1:] {
		if !blank(row) {
			n++
		}
	}
	return n
}

func toFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
