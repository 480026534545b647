// Package clinical implements the pure computation core: renal function,
// glycemic classification, drug-class recommendation, dosing text and the
// bolus calculator. Nothing in this package performs I/O.
package clinical

import "math"

// MgDLPerMmolL is the glucose conversion factor.
const MgDLPerMmolL = 18.0

// MgDLToMmolL converts a glucose value to mmol/L, rounded to two decimals so a
// round trip stays within 0.1 mg/dL.
func MgDLToMmolL(v float64) float64 {
	return Round2(v / MgDLPerMmolL)
}

// MmolLToMgDL converts a glucose value to mg/dL, rounded to one decimal.
func MmolLToMgDL(v float64) float64 {
	return Round1(v * MgDLPerMmolL)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundHalfUnit rounds an insulin dose to the nearest 0.5 unit.
func RoundHalfUnit(v float64) float64 {
	return math.Round(v*2) / 2
}
