package duct

import (
	"errors"
	"math"
)

// Candidate generation parameters.
const (
	GridMM         = 50
	HeightSteps    = 10
	MinAspectRatio = 1.0
	MaxAspectRatio = 4.0
)

// Reasons a height step produced no candidate.
const (
	SkipWidthNotFound  = "width_not_found"
	SkipAspectBelowOne = "aspect_below_one"
)

// Candidate is one rectangular alternative, dimensions on the 50 mm grid.
type Candidate struct {
	Option               int     `json:"option"`
	Valid                bool    `json:"valid"`
	WidthMM              float64 `json:"width_mm"`
	HeightMM             float64 `json:"height_mm"`
	EstimatedWidthMM     float64 `json:"estimated_width_mm"`
	AspectRatio          float64 `json:"aspect_ratio"`
	VelocityMS           float64 `json:"velocity_m_s"`
	PressureDropPaM      float64 `json:"pressure_drop_pa_m"`
	EquivalentDiameterMM float64 `json:"equivalent_diameter_mm"`
	FrictionFactor       float64 `json:"friction_factor"`
}

// Skip records a height step that was dropped from the table.
type Skip struct {
	Option   int     `json:"option"`
	HeightMM float64 `json:"height_mm"`
	Reason   string  `json:"reason"`
}

// Table is the outcome of Generate. Candidates are in increasing height order.
type Table struct {
	Spec           FlowSpec    `json:"spec"`
	SquareSideMM   float64     `json:"square_side_mm"`
	SquareHeadLoss HeadLoss    `json:"square_head_loss"`
	InitialHeight  float64     `json:"initial_height_mm"`
	Candidates     []Candidate `json:"candidates"`
	Skipped        []Skip      `json:"skipped,omitempty"`
}

// Generate sizes a square duct for spec and derives up to ten rectangular
// alternatives from it. A square NotFound aborts; width NotFound only skips
// that height.
func Generate(spec FlowSpec) (Table, error) {
	side, err := SolveSquare(spec)
	if err != nil {
		return Table{}, err
	}

	table := Table{
		Spec:           spec,
		SquareSideMM:   side,
		SquareHeadLoss: ComputeHeadLoss(Square(side), spec.FlowLS),
		InitialHeight:  InitialHeight(side),
		Candidates:     make([]Candidate, 0, HeightSteps),
	}

	for i := 0; i < HeightSteps; i++ {
		height := table.InitialHeight + float64(i*GridMM)
		est, err := SolveWidth(spec, height)
		if errors.Is(err, ErrNotFound) {
			table.Skipped = append(table.Skipped, Skip{Option: i + 1, HeightMM: height, Reason: SkipWidthNotFound})
			continue
		}
		if err != nil {
			return Table{}, err
		}

		width := RoundUpToGrid(est)
		ar := width / height
		if ar < MinAspectRatio {
			table.Skipped = append(table.Skipped, Skip{Option: i + 1, HeightMM: height, Reason: SkipAspectBelowOne})
			continue
		}

		hl := ComputeHeadLoss(Rect(width, height), spec.FlowLS)
		table.Candidates = append(table.Candidates, Candidate{
			Option:               i + 1,
			Valid:                ar >= MinAspectRatio && ar <= MaxAspectRatio,
			WidthMM:              width,
			HeightMM:             height,
			EstimatedWidthMM:     est,
			AspectRatio:          ar,
			VelocityMS:           Velocity(spec.FlowLS, width, height),
			PressureDropPaM:      hl.PressureDropPaM,
			EquivalentDiameterMM: hl.EquivalentDiameterMM,
			FrictionFactor:       hl.FrictionFactor,
		})
	}

	return table, nil
}

// InitialHeight is roughly half the square side, rounded up to the grid,
// never below one grid step.
func InitialHeight(sideMM float64) float64 {
	h := math.Ceil((sideMM/2-25)/GridMM) * GridMM
	return math.Max(GridMM, h)
}

// RoundUpToGrid rounds mm up to the next multiple of GridMM.
func RoundUpToGrid(mm float64) float64 {
	return math.Ceil(mm/GridMM) * GridMM
}

// Velocity in m/s for q L/s through a w x h mm section.
func Velocity(q, widthMM, heightMM float64) float64 {
	return 1000 * q / (widthMM * heightMM)
}

// ValidCount returns how many candidates are within the aspect-ratio bounds.
func (t Table) ValidCount() int {
	n := 0
	for _, c := range t.Candidates {
		if c.Valid {
			n++
		}
	}
	return n
}
