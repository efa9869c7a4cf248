package duct

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/observability"
)

const tool = "duct"

type Handler struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Units   units.System
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input Request
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		WriteError(w, h.Logger, fmt.Errorf("%w: malformed request body", ErrInvalidInput))
		h.Metrics.RecordCalculation(tool, Outcome(ErrInvalidInput, 0), time.Since(start))
		return
	}

	sys, spec, err := input.Resolve(h.Units)
	if err != nil {
		WriteError(w, h.Logger, err)
		h.Metrics.RecordCalculation(tool, Outcome(err, 0), time.Since(start))
		return
	}

	table, err := Generate(spec)
	Record(h.Metrics, tool, table, err, start)
	if err != nil {
		WriteError(w, h.Logger, err)
		return
	}

	h.Logger.Debug("duct sized",
		"q_ls", spec.FlowLS,
		"dp_pa_m", spec.PressureDropPaM,
		"square_mm", table.SquareSideMM,
		"candidates", len(table.Candidates),
	)
	WriteJSON(w, http.StatusOK, Present(table, sys))
}

// Outcome is the metrics label for a finished calculation.
func Outcome(err error, candidates int) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case candidates == 0:
		return "empty"
	}
	return "ok"
}

// Record reports one Generate call to m.
func Record(m *observability.Metrics, tool string, table Table, err error, start time.Time) {
	m.RecordCalculation(tool, Outcome(err, len(table.Candidates)), time.Since(start))
	if errors.Is(err, ErrNotFound) {
		m.RecordNotFound(string(StageSquare), 1)
		return
	}
	if err != nil {
		return
	}
	m.ObserveCandidates(len(table.Candidates))
	widthMisses := 0
	for _, s := range table.Skipped {
		if s.Reason == SkipWidthNotFound {
			widthMisses++
		}
	}
	m.RecordNotFound(string(StageWidth), widthMisses)
}

// StatusFor maps calculation errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ErrorMessage is the client-facing text for err.
func ErrorMessage(err error) string {
	var se *SearchError
	switch {
	case errors.As(err, &se) && se.Stage == StageSquare:
		return "no square duct found"
	case errors.As(err, &se):
		return "no rectangular width found"
	case errors.Is(err, ErrInvalidInput):
		return err.Error()
	}
	return "calculation error"
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("calculation failed", "error", err)
	} else {
		logger.Debug("calculation rejected", "status", status, "error", err)
	}
	WriteJSON(w, status, map[string]string{"error": ErrorMessage(err)})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}
