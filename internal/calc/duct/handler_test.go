package duct_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
	"Ductsizer/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler() (*duct.Handler, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return &duct.Handler{Logger: slog.Default(), Metrics: m, Units: units.SI}, m
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tools/duct/calc", strings.NewReader(body))
	h(rec, req)
	return rec
}

func TestCalcSI(t *testing.T) {
	h, m := newHandler()
	rec := post(h.Calc, `{"q":100,"dp":0.615,"units":"SI"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp duct.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 182.0, resp.SquareSide)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "400×100", resp.Rows[0].Size)
	assert.Equal(t, "✓", resp.Rows[0].Marker)
	assert.Len(t, resp.Skipped, 7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("duct", "ok")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.SolverNotFound.WithLabelValues("width")))
}

func TestCalcIP(t *testing.T) {
	h, _ := newHandler()
	rec := post(h.Calc, `{"q":212,"dp":0.075,"units":"IP"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp duct.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, units.IP, resp.Units)
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "16×4", resp.Rows[0].Size)
	assert.Equal(t, 182.0, resp.SI.SquareSideMM)
}

func TestCalcDefaultsWhenEmpty(t *testing.T) {
	h, _ := newHandler()
	rec := post(h.Calc, `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp duct.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Q)
	assert.Equal(t, 0.615, resp.DP)
}

func TestCalcRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"malformed": `{"q":`,
		"negative":  `{"q":-100,"dp":0.615}`,
		"zero q":    `{"q":0}`,
		"zero dp":   `{"q":100,"dp":0}`,
		"units":     `{"q":100,"dp":0.615,"units":"cgs"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			h, m := newHandler()
			rec := post(h.Calc, body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var out map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.Contains(t, out["error"], "invalid input")
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("duct", "invalid")))
		})
	}
}

func TestCalcSquareNotFound(t *testing.T) {
	h, m := newHandler()
	rec := post(h.Calc, `{"q":1000000,"dp":0.615}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "no square duct found", out["error"])
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SolverNotFound.WithLabelValues("square")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calculations.WithLabelValues("duct", "not_found")))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", duct.Outcome(nil, 3))
	assert.Equal(t, "empty", duct.Outcome(nil, 0))
	assert.Equal(t, "invalid", duct.Outcome(duct.ErrInvalidInput, 0))
	assert.Equal(t, "not_found", duct.Outcome(&duct.SearchError{Stage: duct.StageSquare}, 0))
	assert.Equal(t, "error", duct.Outcome(assert.AnError, 0))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, duct.StatusFor(duct.ErrInvalidInput))
	assert.Equal(t, http.StatusUnprocessableEntity, duct.StatusFor(&duct.SearchError{Stage: duct.StageWidth}))
	assert.Equal(t, http.StatusInternalServerError, duct.StatusFor(assert.AnError))
	assert.Equal(t, "no rectangular width found", duct.ErrorMessage(&duct.SearchError{Stage: duct.StageWidth}))
	assert.Equal(t, "calculation error", duct.ErrorMessage(assert.AnError))
}
