// Package fit sizes a single rectangular duct when the height is fixed,
// e.g. by the ceiling void.
package fit

import (
	"fmt"

	duct "Ductsizer/internal/calc/duct"
	"Ductsizer/internal/calc/units"
)

// Input is a duct request plus the fixed height, in the request's units.
type Input struct {
	duct.Request
	Height float64 `json:"height"`
}

type Result struct {
	Units              units.System `json:"units"`
	Height             float64      `json:"height"`
	EstimatedWidth     float64      `json:"estimated_width"`
	Width              float64      `json:"width"`
	Size               string       `json:"size"`
	AspectRatio        float64      `json:"aspect_ratio"`
	Velocity           float64      `json:"velocity"`
	PressureDrop       float64      `json:"pressure_drop"`
	EquivalentDiameter float64      `json:"equivalent_diameter"`
	Valid              bool         `json:"valid"`
	Notes              string       `json:"notes"`
}

// Calculate finds the width for in.Height and evaluates the grid-rounded
// section. Unlike the candidate table it reports sections narrower than
// they are tall, flagged invalid.
func Calculate(in Input, fallback units.System) (Result, error) {
	sys, spec, err := in.Resolve(fallback)
	if err != nil {
		return Result{}, err
	}
	if in.Height <= 0 {
		return Result{}, fmt.Errorf("%w: height must be positive", duct.ErrInvalidInput)
	}
	height := duct.RoundUpToGrid(sys.LengthToSI(in.Height))

	est, err := duct.SolveWidth(spec, height)
	if err != nil {
		return Result{}, err
	}
	width := duct.RoundUpToGrid(est)
	hl := duct.ComputeHeadLoss(duct.Rect(width, height), spec.FlowLS)
	ar := width / height

	res := Result{
		Units:              sys,
		Height:             sys.LengthFromSI(height),
		EstimatedWidth:     sys.LengthFromSI(est),
		Width:              sys.LengthFromSI(width),
		AspectRatio:        ar,
		Velocity:           sys.VelocityFromSI(duct.Velocity(spec.FlowLS, width, height)),
		PressureDrop:       sys.DropFromSI(hl.PressureDropPaM),
		EquivalentDiameter: sys.LengthFromSI(hl.EquivalentDiameterMM),
		Valid:              ar >= duct.MinAspectRatio && ar <= duct.MaxAspectRatio,
		Notes:              "Height rounded up to the 50 mm grid; width matched within 0.005 Pa/m then rounded up.",
	}
	if sys == units.IP {
		res.Size = fmt.Sprintf("%.0f×%.0f", res.Width, res.Height)
	} else {
		res.Size = fmt.Sprintf("%d×%d", int(width), int(height))
	}
	return res, nil
}
