package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	duct "Ductsizer/internal/calc/duct"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmdWithClock(clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcTable(t *testing.T) {
	out, err := run(t, "calc", "--q", "100", "--dp", "0.615")
	require.NoError(t, err)
	assert.Contains(t, out, "Square duct: 182×182 mm")
	assert.Contains(t, out, "400×100")
	assert.Contains(t, out, "250×150")
	assert.Contains(t, out, "200×200")
	assert.Contains(t, out, "skipped: "+duct.SkipAspectBelowOne)
}

func TestCalcJSON(t *testing.T) {
	out, err := run(t, "calc", "--q", "212", "--dp", "0.075", "--units", "IP", "--json")
	require.NoError(t, err)

	var resp duct.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, "16×4", resp.Rows[0].Size)
}

func TestCalcErrors(t *testing.T) {
	_, err := run(t, "calc", "--q", "1000000")
	assert.ErrorIs(t, err, duct.ErrNotFound)

	_, err = run(t, "calc", "--q=-1")
	assert.ErrorIs(t, err, duct.ErrInvalidInput)

	_, err = run(t, "calc", "--q", "0")
	assert.ErrorIs(t, err, duct.ErrInvalidInput)

	_, err = run(t, "width", "--height", "150", "--dp", "0")
	assert.ErrorIs(t, err, duct.ErrInvalidInput)

	_, err = run(t, "calc", "--units", "cgs")
	assert.ErrorIs(t, err, duct.ErrInvalidInput)
}

func TestWidth(t *testing.T) {
	out, err := run(t, "width", "--height", "150")
	require.NoError(t, err)
	assert.Contains(t, out, "250×150 mm "+duct.MarkValid)

	_, err = run(t, "width")
	assert.Error(t, err)
}

func TestExportAndReport(t *testing.T) {
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "table.xlsx")
	_, err := run(t, "export", "--out", xlsx)
	require.NoError(t, err)
	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	v, err := f.GetCellValue(f.GetSheetName(0), "C7")
	require.NoError(t, err)
	assert.Equal(t, "400×100", v)
	require.NoError(t, f.Close())

	pdf := filepath.Join(dir, "report.pdf")
	out, err := run(t, "report", "--out", pdf, "--project", "Office Block")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-01")
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
