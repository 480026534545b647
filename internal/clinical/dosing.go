package clinical

import (
	"fmt"
	"math"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// doseSpec holds the fixed initiation/titration/maximum text for one class.
// Insulin initiation is the only weight-parameterized entry and is rendered by
// GuidanceFor.
type doseSpec struct {
	name       string
	initiation string
	titration  string
	maxDose    string
}

var doseTable = map[domain.DrugClass]doseSpec{
	domain.ClassMetformin: {
		name:       "Metformin",
		initiation: "500 mg once daily with the evening meal",
		titration:  "Increase by 500 mg weekly as tolerated",
		maxDose:    "2000 mg/day (1000 mg/day if eGFR 30-44)",
	},
	domain.ClassSGLT2: {
		name:       "SGLT2 inhibitor (empagliflozin)",
		initiation: "10 mg once daily",
		titration:  "Increase to 25 mg daily if A1c remains above target",
		maxDose:    "25 mg/day",
	},
	domain.ClassGLP1: {
		name:       "GLP-1 receptor agonist (semaglutide)",
		initiation: "0.25 mg subcutaneously once weekly",
		titration:  "Double the dose every 4 weeks as tolerated",
		maxDose:    "2 mg/week",
	},
	domain.ClassDPP4: {
		name:       "DPP-4 inhibitor (sitagliptin)",
		initiation: "100 mg once daily",
		titration:  "No titration; reduce to 50 mg/day if eGFR 30-44, 25 mg/day below 30",
		maxDose:    "100 mg/day",
	},
	domain.ClassSulfonylurea: {
		name:       "Sulfonylurea (glimepiride)",
		initiation: "1 mg once daily with breakfast",
		titration:  "Increase by 1 mg every 1-2 weeks",
		maxDose:    "8 mg/day",
	},
	domain.ClassTZD: {
		name:       "Thiazolidinedione (pioglitazone)",
		initiation: "15 mg once daily",
		titration:  "Increase to 30 mg after 12 weeks if needed",
		maxDose:    "45 mg/day",
	},
	domain.ClassBasalInsulin: {
		name:       "Basal insulin (glargine)",
		titration:  "Increase by 2 units every 3 days until fasting glucose 80-130 mg/dL",
		maxDose:    "0.5 U/kg/day before reassessing the regimen",
	},
	domain.ClassPrandialInsulin: {
		name:       "Prandial insulin (rapid-acting analog)",
		initiation: "4 units (or 10% of basal dose) before the largest meal",
		titration:  "Increase by 1-2 units twice weekly",
		maxDose:    "Individualize per carbohydrate intake",
	},
}

// InsulinStartUnits computes the weight-scaled basal starting dose:
// max(10, round(0.1 x weight)), with the coefficient doubled when A1c >= 9 and
// there is no hypoglycemia-risk flag.
func InsulinStartUnits(weightKg float64, a1c *float64, hypoglycemiaRisk bool) int {
	coef := 0.1
	if a1c != nil && *a1c >= a1cHigh && !hypoglycemiaRisk {
		coef = 0.2
	}
	units := int(math.Round(coef * weightKg))
	if units < 10 {
		units = 10
	}
	return units
}

// GuidanceFor renders the dosing block for one class. The catalog entry, when
// available, overrides the drug name and contributes its formulary notes;
// renal notes come from the canonical threshold table.
func GuidanceFor(class domain.DrugClass, entry *domain.CatalogEntry, profile domain.PatientProfile, egfr *float64) domain.DrugGuidance {
	spec := doseTable[class]
	g := domain.DrugGuidance{
		Class:      class,
		Name:       spec.name,
		Initiation: spec.initiation,
		Titration:  spec.titration,
		MaxDose:    spec.maxDose,
	}
	if entry != nil {
		if entry.Name != "" {
			g.Name = entry.Name
		}
		if entry.Notes != "" {
			g.RenalNote = entry.Notes
		}
	}

	if class == domain.ClassBasalInsulin {
		g.Initiation = fmt.Sprintf("%d units at bedtime (weight-based)", InsulinStartUnits(profile.WeightKg, profile.A1cPct, profile.HypoglycemiaRisk))
	}

	if note := renalNote(class, egfr); note != "" {
		g.RenalNote = note
	}
	return g
}

func renalNote(class domain.DrugClass, egfr *float64) string {
	switch class {
	case domain.ClassMetformin:
		switch MetforminStatus(egfr) {
		case MetforminReduced:
			return fmt.Sprintf("eGFR %.0f-%.0f: cap at 1000 mg/day.", egfrMetforminReduced, egfrMetforminFull-1)
		case MetforminContraindicated:
			return fmt.Sprintf("Contraindicated: eGFR < %.0f.", egfrMetforminReduced)
		case MetforminUnknown:
			return "Renal function unverified: confirm eGFR before dosing."
		}
	case domain.ClassSGLT2:
		if !SGLT2Allowed(egfr) {
			return fmt.Sprintf("Do not initiate: eGFR < %.0f.", egfrSGLT2Floor)
		}
		if RenalCaution(egfr) {
			return "Renal function unverified: confirm eGFR before dosing."
		}
	}
	return ""
}

// NextStepInput feeds the escalation tree. It is recomputed fresh from current
// inputs on every call; no prior recommendation is remembered.
type NextStepInput struct {
	CurrentPlan  []domain.DrugClass
	TargetA1c    *float64
	ActualA1c    *float64
	Predominance domain.Predominance
	EGFR         *float64
	BMI          float64
}

// NextStep produces the escalation advice for a patient already on therapy.
func NextStep(in NextStepInput) []string {
	if in.ActualA1c == nil {
		return []string{"Obtain an A1c measurement before adjusting therapy."}
	}
	target := 7.0
	if in.TargetA1c != nil {
		target = *in.TargetA1c
	}

	if *in.ActualA1c <= target {
		return []string{
			"A1c at target: reinforce adherence and lifestyle measures.",
			"Re-evaluate in 8-12 weeks.",
		}
	}

	onBasal := false
	for _, c := range in.CurrentPlan {
		if c == domain.ClassBasalInsulin {
			onBasal = true
			break
		}
	}

	if onBasal {
		if in.Predominance == domain.PredomPostprandial {
			return []string{"Above target on basal insulin with postprandial excursions: add prandial insulin before the largest meal."}
		}
		return []string{"Above target on basal insulin: titrate by +2 units every 3 days until fasting glucose is 80-130 mg/dL."}
	}

	if in.Predominance == domain.PredomFasting {
		return []string{"Above target with fasting-predominant pattern: initiate basal insulin."}
	}
	if in.BMI >= obesityBMI {
		return []string{"Above target: add a GLP-1 receptor agonist (BMI favors weight benefit)."}
	}
	if SGLT2Allowed(in.EGFR) {
		return []string{"Above target: add an SGLT2 inhibitor."}
	}
	return []string{"Above target with advanced renal impairment: initiate basal insulin."}
}
