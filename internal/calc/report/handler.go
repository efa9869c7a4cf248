package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/observability"

	"github.com/jonboulle/clockwork"
)

const (
	pdfTool    = "report"
	exportTool = "export"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Input struct {
	Meta
	duct.Request
}

type Handler struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Units   units.System
	// Clock dates the PDF report; nil means the wall clock.
	Clock clockwork.Clock
}

func (h *Handler) clock() clockwork.Clock {
	if h.Clock == nil {
		return clockwork.NewRealClock()
	}
	return h.Clock
}

// Generate sizes the request and returns the result as a PDF.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	input, resp, ok := h.size(w, r, pdfTool, start)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WritePDF(&buf, input.Meta, resp, h.clock().Now()); err != nil {
		h.Logger.Error("report generation failed", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"duct-report.pdf\"")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// Export sizes the request and returns the candidate table as xlsx.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	_, resp, ok := h.size(w, r, exportTool, start)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, resp); err != nil {
		h.Logger.Error("export failed", "error", err)
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"ducts.xlsx\"")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (h *Handler) size(w http.ResponseWriter, r *http.Request, tool string, start time.Time) (Input, duct.Response, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		duct.WriteError(w, h.Logger, fmt.Errorf("%w: malformed request body", duct.ErrInvalidInput))
		h.Metrics.RecordCalculation(tool, "invalid", time.Since(start))
		return input, duct.Response{}, false
	}

	sys, spec, err := input.Resolve(h.Units)
	if err != nil {
		duct.WriteError(w, h.Logger, err)
		h.Metrics.RecordCalculation(tool, duct.Outcome(err, 0), time.Since(start))
		return input, duct.Response{}, false
	}

	table, err := duct.Generate(spec)
	duct.Record(h.Metrics, tool, table, err, start)
	if err != nil {
		duct.WriteError(w, h.Logger, err)
		return input, duct.Response{}, false
	}
	return input, duct.Present(table, sys), true
}
