package fit

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

const tool = "fit"

type Handler struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Units   units.System
}

func (h *Handler) Width(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		duct.WriteError(w, h.Logger, fmt.Errorf("%w: malformed request body", duct.ErrInvalidInput))
		h.Metrics.RecordCalculation(tool, "invalid", time.Since(start))
		return
	}
	res, err := Calculate(input, h.Units)
	h.Metrics.RecordCalculation(tool, duct.Outcome(err, 1), time.Since(start))
	if err != nil {
		if duct.StatusFor(err) == http.StatusUnprocessableEntity {
			h.Metrics.RecordNotFound(string(duct.StageWidth), 1)
		}
		duct.WriteError(w, h.Logger, err)
		return
	}
	duct.WriteJSON(w, http.StatusOK, res)
}
