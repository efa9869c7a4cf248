package duct

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("no duct size found")
)

// Search ranges in mm.
const (
	SquareMinMM = 50
	SquareMaxMM = 3000
	WidthMinMM  = 50
	WidthMaxMM  = 5000
)

// Acceptance policies. The square search uses a relative band, the width
// search an absolute tolerance in Pa/m.
const (
	SquareBandLow     = 0.8
	SquareBandHigh    = 1.2
	WidthTolerancePaM = 0.005
)

// Stage names which scan exhausted its range.
type Stage string

const (
	StageSquare Stage = "square"
	StageWidth  Stage = "width"
)

// FlowSpec is the input to every calculation: Q in L/s, dp in Pa/m.
type FlowSpec struct {
	FlowLS          float64 `json:"q_ls"`
	PressureDropPaM float64 `json:"dp_pa_m"`
}

func (f FlowSpec) Validate() error {
	if !positive(f.FlowLS) {
		return fmt.Errorf("%w: airflow must be positive, got %v", ErrInvalidInput, f.FlowLS)
	}
	if !positive(f.PressureDropPaM) {
		return fmt.Errorf("%w: pressure drop must be positive, got %v", ErrInvalidInput, f.PressureDropPaM)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}

// SearchError reports a scan that found no size. It matches ErrNotFound.
type SearchError struct {
	Stage    Stage
	Spec     FlowSpec
	HeightMM float64
}

func (e *SearchError) Error() string {
	if e.Stage == StageWidth {
		return fmt.Sprintf("no rectangular width found for height %.0f mm (Q=%g L/s, dp=%g Pa/m)",
			e.HeightMM, e.Spec.FlowLS, e.Spec.PressureDropPaM)
	}
	return fmt.Sprintf("no square duct found (Q=%g L/s, dp=%g Pa/m)", e.Spec.FlowLS, e.Spec.PressureDropPaM)
}

func (e *SearchError) Unwrap() error { return ErrNotFound }

// SolveSquare returns the smallest square side in [50, 3000] mm whose head
// loss lies within 80%..120% of the target.
func SolveSquare(spec FlowSpec) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	lo := spec.PressureDropPaM * SquareBandLow
	hi := spec.PressureDropPaM * SquareBandHigh

	for side := SquareMinMM; side <= SquareMaxMM; side++ {
		dp := ComputeHeadLoss(Square(float64(side)), spec.FlowLS).PressureDropPaM
		if lo <= dp && dp <= hi {
			return float64(side), nil
		}
	}
	return 0, &SearchError{Stage: StageSquare, Spec: spec}
}

// SolveWidth returns the smallest width in [50, 5000] mm that, at the given
// height, matches the target within 0.005 Pa/m.
func SolveWidth(spec FlowSpec, heightMM float64) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if !positive(heightMM) {
		return 0, fmt.Errorf("%w: height must be positive, got %v", ErrInvalidInput, heightMM)
	}

	for width := WidthMinMM; width <= WidthMaxMM; width++ {
		dp := ComputeHeadLoss(Rect(float64(width), heightMM), spec.FlowLS).PressureDropPaM
		if math.Abs(dp-spec.PressureDropPaM) <= WidthTolerancePaM {
			return float64(width), nil
		}
	}
	return 0, &SearchError{Stage: StageWidth, Spec: spec, HeightMM: heightMM}
}
