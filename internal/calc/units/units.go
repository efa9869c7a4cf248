// Package units converts between the SI values the duct solvers work in and
// the imperial (IP) values users may enter and read.
package units

import (
	"fmt"
	"strings"
)

type System string

const (
	SI System = "SI"
	IP System = "IP"
)

const (
	LSPerCFM        = 0.471947 // 1 CFM in L/s
	PaMPerInWC100ft = 8.172    // 1 in.wc/100 ft in Pa/m
	MMPerInch       = 25.0     // shop-nominal inch used for duct sizes
	FPMPerMS        = 196.85   // 1 m/s in ft/min
)

// Parse accepts "SI" or "IP" in any case; empty means SI.
func Parse(s string) (System, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "SI", "METRIC":
		return SI, nil
	case "IP", "IMPERIAL":
		return IP, nil
	}
	return "", fmt.Errorf("unknown unit system %q", s)
}

// Labels are the display units for one system.
type Labels struct {
	Flow         string `json:"flow"`
	PressureDrop string `json:"pressure_drop"`
	Length       string `json:"length"`
	Velocity     string `json:"velocity"`
}

func (s System) Labels() Labels {
	if s == IP {
		return Labels{Flow: "CFM", PressureDrop: "in.wc/100ft", Length: "in", Velocity: "ft/min"}
	}
	return Labels{Flow: "L/s", PressureDrop: "Pa/m", Length: "mm", Velocity: "m/s"}
}

// Defaults returns the form defaults for the system, in that system's units.
func (s System) Defaults() (flow, dp float64) {
	if s == IP {
		return 212, 0.075
	}
	return 100, 0.615
}

func (s System) FlowToSI(v float64) float64 {
	if s == IP {
		return v * LSPerCFM
	}
	return v
}

func (s System) FlowFromSI(ls float64) float64 {
	if s == IP {
		return ls / LSPerCFM
	}
	return ls
}

func (s System) DropToSI(v float64) float64 {
	if s == IP {
		return v * PaMPerInWC100ft
	}
	return v
}

func (s System) DropFromSI(paM float64) float64 {
	if s == IP {
		return paM / PaMPerInWC100ft
	}
	return paM
}

func (s System) LengthToSI(v float64) float64 {
	if s == IP {
		return v * MMPerInch
	}
	return v
}

func (s System) LengthFromSI(mm float64) float64 {
	if s == IP {
		return mm / MMPerInch
	}
	return mm
}

func (s System) VelocityFromSI(ms float64) float64 {
	if s == IP {
		return ms * FPMPerMS
	}
	return ms
}
