package clinical

import (
	"fmt"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// fastingInsulinFloor is the fasting glucose (mg/dL) above which insulin is
// initiated regardless of other findings.
const fastingInsulinFloor = 300.0

// obesityBMI gates GLP-1 RA preference.
const obesityBMI = 30.0

// RecommendInput is everything the recommendation engine branches on.
type RecommendInput struct {
	Diagnosis      domain.DiagnosisType
	Severity       domain.SeverityBand
	Predominance   domain.Predominance
	A1c            *float64
	FastingGlucose *float64 // mg/dL
	EGFR           *float64
	BMI            float64
	ASCVD          bool
	HeartFailure   bool
	CKD            bool
	Catabolic      bool
}

// recommendationBuilder keeps the class list ordered and de-duplicated; the
// first insertion of a class wins.
type recommendationBuilder struct {
	classes []domain.DrugClass
	seen    map[domain.DrugClass]bool
	rec     domain.Recommendation
}

func newBuilder() *recommendationBuilder {
	return &recommendationBuilder{seen: make(map[domain.DrugClass]bool)}
}

func (b *recommendationBuilder) add(class domain.DrugClass) {
	if !b.seen[class] {
		b.seen[class] = true
		b.classes = append(b.classes, class)
	}
}

func (b *recommendationBuilder) justify(format string, args ...interface{}) {
	b.rec.Justification = append(b.rec.Justification, fmt.Sprintf(format, args...))
}

func (b *recommendationBuilder) notice(text string) {
	b.rec.Notices = append(b.rec.Notices, text)
}

func (b *recommendationBuilder) build() domain.Recommendation {
	b.rec.Classes = b.classes
	return b.rec
}

// Recommend selects an ordered drug-class list following the ADA-aligned
// decision tree. Branches are evaluated top to bottom; the first matching
// branch returns. The result is never empty.
func Recommend(in RecommendInput) domain.Recommendation {
	b := newBuilder()

	// 1. Insulin-dependent diabetes overrides everything else.
	if in.Diagnosis == domain.DiagnosisInsulinDependent {
		b.add(domain.ClassBasalInsulin)
		b.add(domain.ClassPrandialInsulin)
		b.justify("Insulin-dependent diabetes: basal plus prandial insulin is the backbone of therapy.")
		return b.build()
	}

	// 2. Insulin initiation triggers: catabolic features, fasting >= 300 or A1c >= 10.
	a1cVeryHighNow := in.A1c != nil && *in.A1c >= a1cVeryHigh
	fastingCritical := in.FastingGlucose != nil && *in.FastingGlucose >= fastingInsulinFloor
	if in.Catabolic || fastingCritical || a1cVeryHighNow {
		b.add(domain.ClassBasalInsulin)
		switch {
		case in.Catabolic:
			b.justify("Catabolic symptoms: start basal insulin without delay.")
		case fastingCritical:
			b.justify("Fasting glucose >= %.0f mg/dL: start basal insulin.", fastingInsulinFloor)
		default:
			b.justify("A1c >= %.0f%%: start basal insulin.", a1cVeryHigh)
		}
		if in.Predominance == domain.PredomPostprandial || a1cVeryHighNow {
			b.add(domain.ClassPrandialInsulin)
			b.justify("Marked postprandial burden: add prandial insulin.")
		}
		return b.build()
	}

	// 3. Compelling comorbidity: heart failure, CKD or ASCVD.
	if in.HeartFailure || in.CKD || in.ASCVD {
		if SGLT2Allowed(in.EGFR) {
			b.add(domain.ClassSGLT2)
			b.justify("Cardiorenal comorbidity: SGLT2 inhibitor for organ protection.")
			if RenalCaution(in.EGFR) {
				b.notice("eGFR unavailable: confirm renal function before starting an SGLT2 inhibitor.")
			}
		}
		b.addMetformin(in.EGFR)
		if in.ASCVD || in.BMI >= obesityBMI {
			b.add(domain.ClassGLP1)
			b.justify("ASCVD or BMI >= %.0f: GLP-1 receptor agonist with proven benefit.", obesityBMI)
		}
		if len(b.classes) == 0 {
			b.add(domain.ClassGLP1)
			b.justify("Advanced renal impairment excludes metformin and SGLT2 inhibitors: GLP-1 receptor agonist preferred.")
		}
		return b.build()
	}

	// 4. No comorbidity driver: branch on severity band.
	switch in.Severity {
	case domain.SeverityMild:
		b.addMetformin(in.EGFR)
		if in.Predominance == domain.PredomPostprandial {
			b.add(domain.ClassGLP1)
			b.justify("Postprandial-predominant pattern: GLP-1 receptor agonist targets post-meal excursions.")
		}
	case domain.SeverityModerate:
		b.addMetformin(in.EGFR)
		if in.BMI >= obesityBMI {
			b.add(domain.ClassGLP1)
			b.justify("BMI >= %.0f: GLP-1 receptor agonist preferred for weight benefit.", obesityBMI)
		} else if SGLT2Allowed(in.EGFR) {
			b.add(domain.ClassSGLT2)
			b.justify("Moderate hyperglycemia: add an SGLT2 inhibitor.")
		} else {
			b.add(domain.ClassGLP1)
			b.justify("eGFR below SGLT2 floor: GLP-1 receptor agonist as second agent.")
		}
	case domain.SeverityHigh:
		b.addMetformin(in.EGFR)
		if in.Predominance == domain.PredomFasting && SGLT2Allowed(in.EGFR) {
			b.add(domain.ClassSGLT2)
			b.justify("Fasting-predominant pattern: SGLT2 inhibitor as second agent.")
		} else {
			b.add(domain.ClassGLP1)
			b.justify("High A1c: GLP-1 receptor agonist as second agent.")
		}
		b.add(domain.ClassDPP4)
		b.justify("Third oral agent: DPP-4 inhibitor.")
	case domain.SeverityUnknown:
		b.addMetformin(in.EGFR)
		b.notice("A1c unavailable: severity could not be determined. Confirm glycemic status before escalating.")
	default:
		// Very-high severity is captured by the insulin-initiation branch
		// above; this remains the documented last resort.
		b.add(domain.ClassBasalInsulin)
		b.justify("Severe hyperglycemia: basal insulin.")
	}

	if len(b.classes) == 0 {
		b.add(domain.ClassBasalInsulin)
		b.justify("No oral agent permissible: basal insulin as last resort.")
	}
	return b.build()
}

// addMetformin applies the canonical renal gate and records the reasoning.
func (b *recommendationBuilder) addMetformin(egfr *float64) {
	switch MetforminStatus(egfr) {
	case MetforminFull:
		b.add(domain.ClassMetformin)
		b.justify("Metformin at full dose (eGFR >= %.0f).", egfrMetforminFull)
	case MetforminReduced:
		b.add(domain.ClassMetformin)
		b.justify("Metformin at reduced dose, max 1000 mg/day (eGFR %.0f-%.0f).", egfrMetforminReduced, egfrMetforminFull-1)
	case MetforminUnknown:
		b.add(domain.ClassMetformin)
		b.notice("eGFR unavailable: confirm renal function before continuing metformin.")
	case MetforminContraindicated:
		b.justify("Metformin withheld: eGFR < %.0f.", egfrMetforminReduced)
	}
}
