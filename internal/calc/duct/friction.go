package duct

import "math"

// Shape distinguishes the two cross-sections the correlation is applied to.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeRectangular
)

func (s Shape) String() string {
	if s == ShapeSquare {
		return "square"
	}
	return "rectangular"
}

// Section is a duct cross-section in millimeters.
type Section struct {
	Shape  Shape
	Width  float64
	Height float64
}

// Square is a square section with the given side.
func Square(side float64) Section {
	return Section{Shape: ShapeSquare, Width: side, Height: side}
}

// Rect is a rectangular section of width × height.
func Rect(width, height float64) Section {
	return Section{Shape: ShapeRectangular, Width: width, Height: height}
}

// HeadLoss is the hydraulic state of one section at one flow rate.
type HeadLoss struct {
	EquivalentDiameterMM float64 `json:"equivalent_diameter_mm"`
	FrictionFactor       float64 `json:"friction_factor"`
	PressureDropPaM      float64 `json:"pressure_drop_pa_m"`
}

// Empirical duct-friction correlation. Q in L/s, dimensions in mm, dp in Pa/m.
const (
	frictionThreshold = 0.018
	lowReSlope        = 0.85
	lowReOffset       = 0.0028
)

var calcConst = 9.6e9 / (math.Pi * math.Pi)

// EquivalentDiameter returns De in mm.
func (s Section) EquivalentDiameter() float64 {
	if s.Shape == ShapeSquare {
		side := s.Width
		return 1.3 * math.Pow(side*side, 0.625) * math.Pow(2*side, -0.25)
	}
	a, b := s.Width, s.Height
	return 1.3 * math.Pow(a*b, 0.625) / math.Pow(a+b, 0.25)
}

// RawFriction is the uncorrected friction factor f1.
func RawFriction(de, q float64) float64 {
	return 0.11 * math.Pow(0.09/de+0.0008043*de/q, 0.25)
}

// CorrectFriction applies the low-Reynolds branch below f1 = 0.018.
// The jump at the threshold is part of the correlation.
func CorrectFriction(f1 float64) float64 {
	if f1 >= frictionThreshold {
		return f1
	}
	return lowReSlope*f1 + lowReOffset
}

// ComputeHeadLoss evaluates the friction correlation for a section carrying q L/s.
func ComputeHeadLoss(s Section, q float64) HeadLoss {
	de := s.EquivalentDiameter()
	f := CorrectFriction(RawFriction(de, q))

	var dp float64
	if s.Shape == ShapeSquare {
		dp = calcConst * f * q * q * math.Pow(de, -5)
	} else {
		dp = calcConst * f * q * q / math.Pow(de, 5)
	}

	return HeadLoss{
		EquivalentDiameterMM: de,
		FrictionFactor:       f,
		PressureDropPaM:      dp,
	}
}
