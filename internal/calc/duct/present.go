package duct

import (
	"fmt"
	"math"

	"Ductsizer/internal/calc/units"
)

const (
	MarkValid   = "✓"
	MarkInvalid = "✗"

	MessageNoSizes = "no suitable sizes"
)

// Request is the calculator form. Q and DP are in the units named by Units;
// an omitted field takes that system's default, an explicit zero is invalid.
type Request struct {
	Q     *float64 `json:"q,omitempty"`
	DP    *float64 `json:"dp,omitempty"`
	Units string   `json:"units,omitempty"`
}

// NewRequest builds a Request with both values given.
func NewRequest(q, dp float64, sys string) Request {
	return Request{Q: &q, DP: &dp, Units: sys}
}

// Resolve picks the unit system and converts the request to SI.
func (r Request) Resolve(fallback units.System) (units.System, FlowSpec, error) {
	sys := fallback
	if sys == "" {
		sys = units.SI
	}
	if r.Units != "" {
		parsed, err := units.Parse(r.Units)
		if err != nil {
			return "", FlowSpec{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		sys = parsed
	}

	q, dp := sys.Defaults()
	if r.Q != nil {
		q = *r.Q
	}
	if r.DP != nil {
		dp = *r.DP
	}

	spec := FlowSpec{FlowLS: sys.FlowToSI(q), PressureDropPaM: sys.DropToSI(dp)}
	if err := spec.Validate(); err != nil {
		return "", FlowSpec{}, err
	}
	return sys, spec, nil
}

// Row is one candidate formatted for display.
type Row struct {
	Option             int     `json:"option"`
	Valid              bool    `json:"valid"`
	Marker             string  `json:"marker"`
	Size               string  `json:"size"`
	Width              float64 `json:"width"`
	Height             float64 `json:"height"`
	AspectRatio        float64 `json:"aspect_ratio"`
	Velocity           float64 `json:"velocity"`
	PressureDrop       float64 `json:"pressure_drop"`
	EquivalentDiameter float64 `json:"equivalent_diameter"`
}

// Response is a Table converted to the caller's unit system.
type Response struct {
	Units      units.System `json:"units"`
	Labels     units.Labels `json:"labels"`
	Q          float64      `json:"q"`
	DP         float64      `json:"dp"`
	SquareSide float64      `json:"square_side"`
	Rows       []Row        `json:"rows"`
	Skipped    []Skip       `json:"skipped,omitempty"`
	Message    string       `json:"message,omitempty"`
	SI         Table        `json:"si"`
}

// Present converts table for display in sys, rounding the way the sizing
// table has always been shown.
func Present(table Table, sys units.System) Response {
	resp := Response{
		Units:      sys,
		Labels:     sys.Labels(),
		Q:          round(sys.FlowFromSI(table.Spec.FlowLS), 3),
		DP:         round(sys.DropFromSI(table.Spec.PressureDropPaM), 4),
		SquareSide: round(sys.LengthFromSI(table.SquareSideMM), lengthPlaces(sys)),
		Rows:       make([]Row, 0, len(table.Candidates)),
		Skipped:    table.Skipped,
		SI:         table,
	}

	for _, c := range table.Candidates {
		resp.Rows = append(resp.Rows, presentRow(c, sys))
	}
	if len(resp.Rows) == 0 {
		resp.Message = MessageNoSizes
	}
	return resp
}

func presentRow(c Candidate, sys units.System) Row {
	row := Row{
		Option:             c.Option,
		Valid:              c.Valid,
		Marker:             MarkInvalid,
		Width:              sys.LengthFromSI(c.WidthMM),
		Height:             sys.LengthFromSI(c.HeightMM),
		AspectRatio:        round(c.AspectRatio, 2),
		PressureDrop:       round(sys.DropFromSI(c.PressureDropPaM), 3),
		EquivalentDiameter: round(sys.LengthFromSI(c.EquivalentDiameterMM), lengthPlaces(sys)),
	}
	if c.Valid {
		row.Marker = MarkValid
	}
	if sys == units.IP {
		row.Size = fmt.Sprintf("%.0f×%.0f", row.Width, row.Height)
		row.Velocity = round(sys.VelocityFromSI(c.VelocityMS), 0)
	} else {
		row.Size = fmt.Sprintf("%d×%d", int(c.WidthMM), int(c.HeightMM))
		row.Velocity = round(c.VelocityMS, 2)
	}
	return row
}

func lengthPlaces(sys units.System) int {
	if sys == units.IP {
		return 1
	}
	return 0
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
