package fit

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSI(t *testing.T) {
	res, err := Calculate(Input{Request: duct.NewRequest(100, 0.615, ""), Height: 150}, units.SI)
	require.NoError(t, err)

	assert.Equal(t, units.SI, res.Units)
	assert.Equal(t, 150.0, res.Height)
	assert.Equal(t, 240.0, res.EstimatedWidth)
	assert.Equal(t, 250.0, res.Width)
	assert.Equal(t, "250×150", res.Size)
	assert.InDelta(t, 1.667, res.AspectRatio, 1e-3)
	assert.InDelta(t, 0.5621, res.PressureDrop, 1e-4)
	assert.True(t, res.Valid)
}

func TestCalculateRoundsHeightUp(t *testing.T) {
	res, err := Calculate(Input{Request: duct.NewRequest(100, 0.615, ""), Height: 120}, units.SI)
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.Height)
}

func TestCalculateReportsNarrowSections(t *testing.T) {
	res, err := Calculate(Input{Request: duct.NewRequest(100, 0.615, ""), Height: 250}, units.SI)
	require.NoError(t, err)
	assert.Equal(t, 150.0, res.Width)
	assert.False(t, res.Valid)
}

func TestCalculateIP(t *testing.T) {
	// 4 in is 100 mm on the shop-nominal inch.
	res, err := Calculate(Input{Request: duct.NewRequest(212, 0.075, "IP"), Height: 4}, units.SI)
	require.NoError(t, err)
	assert.Equal(t, units.IP, res.Units)
	assert.Equal(t, 4.0, res.Height)
	assert.Equal(t, 16.0, res.Width)
	assert.Equal(t, "16×4", res.Size)
}

func TestCalculateErrors(t *testing.T) {
	_, err := Calculate(Input{Request: duct.NewRequest(100, 0.615, ""), Height: 0}, units.SI)
	assert.ErrorIs(t, err, duct.ErrInvalidInput)

	_, err = Calculate(Input{Request: duct.NewRequest(100, 0.615, ""), Height: 400}, units.SI)
	assert.ErrorIs(t, err, duct.ErrNotFound)

	_, err = Calculate(Input{Request: duct.NewRequest(0, 0.615, ""), Height: 150}, units.SI)
	assert.ErrorIs(t, err, duct.ErrInvalidInput)
}

func TestWidthHandler(t *testing.T) {
	h := &Handler{Logger: slog.Default(), Metrics: observability.NewMetricsForTesting(), Units: units.SI}

	rec := httptest.NewRecorder()
	h.Width(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"q":100,"dp":0.615,"height":100}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 400.0, res.Width)

	rec = httptest.NewRecorder()
	h.Width(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"q":100,"dp":0.615,"height":400}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no rectangular width found")

	rec = httptest.NewRecorder()
	h.Width(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
