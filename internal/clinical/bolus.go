package clinical

import (
	"math"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// HypoglycemiaThresholdMgDL is the glucose floor below which no bolus is ever
// given.
const HypoglycemiaThresholdMgDL = 70.0

// TDD estimation coefficients (units per kg body weight).
const (
	tddCoefInsulinDependent = 0.5
	tddCoefOther            = 0.3
)

// ICR applies the 500 rule: grams of carbohydrate covered by one unit, rounded
// to one decimal. Returns 0 for a non-positive TDD instead of dividing.
func ICR(tdd float64) float64 {
	if tdd <= 0 {
		return 0
	}
	return Round1(500 / tdd)
}

// CorrectionFactor applies the 1800 rule: mg/dL dropped by one unit, rounded
// to a whole number. Returns 0 for a non-positive TDD.
func CorrectionFactor(tdd float64) float64 {
	if tdd <= 0 {
		return 0
	}
	return math.Round(1800 / tdd)
}

// EstimateTDD estimates total daily insulin dose from body weight.
func EstimateTDD(weightKg float64, diagnosis domain.DiagnosisType) float64 {
	if weightKg <= 0 {
		return 0
	}
	coef := tddCoefOther
	if diagnosis == domain.DiagnosisInsulinDependent {
		coef = tddCoefInsulinDependent
	}
	return Round1(coef * weightKg)
}

// Bolus computes a meal bolus. The hypoglycemia override dominates everything:
// current glucose under 70 mg/dL yields zero units regardless of carbs. The
// correction component never subtracts and the result is rounded to the
// nearest half unit, never negative.
func Bolus(in domain.BolusInput) domain.BolusResult {
	result := domain.BolusResult{TDD: in.TDD, ICR: in.ICR, CF: in.CF}

	if result.ICR == 0 {
		result.ICR = ICR(in.TDD)
	}
	if result.CF == 0 {
		result.CF = CorrectionFactor(in.TDD)
	}

	if in.CurrentGlucose < HypoglycemiaThresholdMgDL {
		result.Warnings = append(result.Warnings,
			"Current glucose below 70 mg/dL: treat hypoglycemia first. No bolus.")
		return result
	}

	if result.ICR <= 0 && result.CF <= 0 {
		result.Warnings = append(result.Warnings,
			"ICR and correction factor undefined (TDD missing): cannot compute a bolus.")
		return result
	}

	if result.ICR > 0 && in.CarbsGrams > 0 {
		result.CarbUnits = in.CarbsGrams / result.ICR
	}
	if result.CF > 0 && in.CurrentGlucose > in.TargetGlucose {
		result.CorrectionUnits = (in.CurrentGlucose - in.TargetGlucose) / result.CF
	}

	total := math.Max(0, result.CarbUnits) + math.Max(0, result.CorrectionUnits)
	result.CarbUnits = Round2(result.CarbUnits)
	result.CorrectionUnits = Round2(result.CorrectionUnits)
	result.Units = RoundHalfUnit(total)
	return result
}
