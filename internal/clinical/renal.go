package clinical

import (
	"errors"
	"math"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// ErrCreatinineOutOfRange is returned when serum creatinine is zero or
// negative; the CKD-EPI equation is undefined there.
var ErrCreatinineOutOfRange = errors.New("serum creatinine must be greater than zero")

// The canonical eGFR thresholds (mL/min/1.73m²). Every renal gate in the
// engine consults these constants through MetforminStatus and SGLT2Allowed;
// they are not restated per branch.
const (
	egfrMetforminFull    = 45.0
	egfrMetforminReduced = 30.0
	egfrSGLT2Floor       = 20.0
)

// MetforminEligibility is the renal verdict for metformin.
type MetforminEligibility int

const (
	// MetforminUnknown means eGFR could not be computed; callers stay
	// permissive but must surface a confirm-renal-function caution.
	MetforminUnknown MetforminEligibility = iota
	MetforminFull
	MetforminReduced // 30–44: max 1000 mg/day
	MetforminContraindicated
)

// EGFR computes the estimated glomerular filtration rate with the race-free
// CKD-EPI 2021 equation, rounded to one decimal.
func EGFR(creatinine float64, age int, sex domain.Sex) (float64, error) {
	if creatinine <= 0 {
		return 0, ErrCreatinineOutOfRange
	}
	if age < 0 {
		return 0, errors.New("age must not be negative")
	}

	kappa := 0.9
	alpha := -0.302
	if sex == domain.SexFemale {
		kappa = 0.7
		alpha = -0.241
	}

	ratio := creatinine / kappa
	egfr := 142 *
		math.Pow(math.Min(ratio, 1), alpha) *
		math.Pow(math.Max(ratio, 1), -1.200) *
		math.Pow(0.9938, float64(age))
	if sex == domain.SexFemale {
		egfr *= 1.012
	}
	return Round1(egfr), nil
}

// BMI computes body-mass index (kg/m²), rounded to one decimal. Returns 0 for
// a non-positive height.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 || weightKg <= 0 {
		return 0
	}
	m := heightCm / 100
	return Round1(weightKg / (m * m))
}

// AssessRenal derives eGFR and BMI from a profile. EGFR stays nil when
// creatinine is absent or invalid rather than reporting a misleading number.
func AssessRenal(p domain.PatientProfile) domain.RenalAssessment {
	assessment := domain.RenalAssessment{BMI: BMI(p.WeightKg, p.HeightCm)}
	if p.SerumCreatinine != nil {
		if egfr, err := EGFR(*p.SerumCreatinine, p.Age, p.Sex); err == nil {
			assessment.EGFR = &egfr
		}
	}
	return assessment
}

// MetforminStatus maps eGFR onto the metformin renal gate.
func MetforminStatus(egfr *float64) MetforminEligibility {
	switch {
	case egfr == nil:
		return MetforminUnknown
	case *egfr >= egfrMetforminFull:
		return MetforminFull
	case *egfr >= egfrMetforminReduced:
		return MetforminReduced
	default:
		return MetforminContraindicated
	}
}

// SGLT2Allowed reports whether an SGLT2 inhibitor may be initiated. Unknown
// eGFR is permissive; callers pair it with RenalCaution.
func SGLT2Allowed(egfr *float64) bool {
	return egfr == nil || *egfr >= egfrSGLT2Floor
}

// RenalCaution reports whether renal function is unverified and any renally
// gated recommendation needs a confirmation note.
func RenalCaution(egfr *float64) bool {
	return egfr == nil
}
