package batch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/observability"
)

const tool = "batch"

type Handler struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Units   units.System
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		duct.WriteError(w, h.Logger, fmt.Errorf("%w: malformed request body", duct.ErrInvalidInput))
		h.Metrics.RecordCalculation(tool, "invalid", time.Since(start))
		return
	}
	res, err := Calculate(input, h.Units)
	if err != nil {
		duct.WriteError(w, h.Logger, err)
		h.Metrics.RecordCalculation(tool, duct.Outcome(err, 0), time.Since(start))
		return
	}

	h.Metrics.RecordCalculation(tool, duct.Outcome(nil, res.Count-res.Failed), time.Since(start))
	h.Logger.Info("batch sized", "items", res.Count, "failed", res.Failed)
	duct.WriteJSON(w, http.StatusOK, res)
}
