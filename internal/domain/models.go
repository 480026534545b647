package domain

import (
	"strings"
	"time"
)

// Sex is the biological sex used by the CKD-EPI equation.
type Sex string

const (
	SexFemale Sex = "female"
	SexMale   Sex = "male"
)

// DiagnosisType distinguishes insulin-dependent from non-insulin-dependent diabetes.
type DiagnosisType string

const (
	DiagnosisInsulinDependent    DiagnosisType = "insulin_dependent"
	DiagnosisNonInsulinDependent DiagnosisType = "non_insulin_dependent"
)

// GlucoseUnit is the unit glucose values were entered in. All internal
// arithmetic runs in mg/dL; conversion happens at the input/output boundary.
type GlucoseUnit string

const (
	UnitMgDL  GlucoseUnit = "mg/dL"
	UnitMmolL GlucoseUnit = "mmol/L"
)

// SeverityBand is the glycemic severity classification. Unknown means A1c was
// not supplied; it is never collapsed into Mild.
type SeverityBand string

const (
	SeverityUnknown  SeverityBand = "unknown"
	SeverityMild     SeverityBand = "mild"
	SeverityModerate SeverityBand = "moderate"
	SeverityHigh     SeverityBand = "high"
	SeverityVeryHigh SeverityBand = "very_high"
)

// Predominance is the fasting vs postprandial glucose pattern. Unknown means
// one or both readings were absent.
type Predominance string

const (
	PredomUnknown      Predominance = "unknown"
	PredomFasting      Predominance = "fasting"
	PredomPostprandial Predominance = "postprandial"
	PredomMixed        Predominance = "mixed"
)

// DrugClass identifies a glucose-lowering drug class in recommendations and in
// the catalog.
type DrugClass string

const (
	ClassMetformin       DrugClass = "metformin"
	ClassSGLT2           DrugClass = "sglt2i"
	ClassGLP1            DrugClass = "glp1_ra"
	ClassDPP4            DrugClass = "dpp4i"
	ClassSulfonylurea    DrugClass = "su"
	ClassTZD             DrugClass = "tzd"
	ClassBasalInsulin    DrugClass = "basal_insulin"
	ClassPrandialInsulin DrugClass = "prandial_insulin"
)

// RenalRule is the catalog tag describing how a drug behaves under renal
// impairment.
type RenalRule string

const (
	RenalNoAdjustment    RenalRule = "none"
	RenalReduceModerate  RenalRule = "adjust"
	RenalContraindicated RenalRule = "contraindicated"
)

// PatientProfile is the clinical snapshot the engines evaluate. Optional labs
// are pointers: nil means "not measured", which is distinct from zero and is
// propagated as an explicit unknown by the classifiers.
//
// Glucose values are held in mg/dL once a profile has passed through the
// profile service; GlucoseUnit records how the user entered them.
type PatientProfile struct {
	ID                  uint
	Name                string
	Age                 int
	Sex                 Sex
	Diagnosis           DiagnosisType
	WeightKg            float64
	HeightCm            float64
	A1cPct              *float64
	TargetA1cPct        *float64
	GlucoseUnit         GlucoseUnit
	FastingGlucose      *float64
	PostprandialGlucose *float64
	SerumCreatinine     *float64
	UACR                *float64
	ASCVD               bool
	HeartFailure        bool
	CKD                 bool
	CatabolicSymptoms   bool
	HypoglycemiaRisk    bool
	MedicationPlan      string // semicolon-separated DrugClass values
	Notes               string
	UpdatedAt           time.Time
}

// Medications parses the serialized medication plan into drug classes.
func (p *PatientProfile) Medications() []DrugClass {
	if strings.TrimSpace(p.MedicationPlan) == "" {
		return nil
	}
	parts := strings.Split(p.MedicationPlan, ";")
	classes := make([]DrugClass, 0, len(parts))
	for _, part := range parts {
		if c := strings.TrimSpace(part); c != "" {
			classes = append(classes, DrugClass(c))
		}
	}
	return classes
}

// CatalogEntry is one row of the immutable drug reference table.
type CatalogEntry struct {
	Class        DrugClass
	Name         string
	CostTier     string // "$", "$$", "$$$"
	Availability string // "alta", "media", "baja"
	RenalRule    RenalRule
	Notes        string
	Institution  string
}

// GlycemicAssessment is derived fresh on every evaluation and never stored.
type GlycemicAssessment struct {
	Severity     SeverityBand `json:"severity"`
	Predominance Predominance `json:"predominance"`
}

// RenalAssessment holds the derived eGFR and BMI. EGFR is nil when creatinine
// was absent or non-positive.
type RenalAssessment struct {
	EGFR *float64 `json:"egfr,omitempty"`
	BMI  float64  `json:"bmi"`
}

// Recommendation is the ordered, de-duplicated drug-class list plus the
// free-text reasoning behind it.
type Recommendation struct {
	Classes       []DrugClass `json:"classes"`
	Justification []string    `json:"justification"`
	Notices       []string    `json:"notices,omitempty"`
}

// DrugGuidance is the human-readable dosing block for one recommended class.
type DrugGuidance struct {
	Class      DrugClass `json:"class"`
	Name       string    `json:"name"`
	Initiation string    `json:"initiation"`
	Titration  string    `json:"titration"`
	MaxDose    string    `json:"max_dose"`
	RenalNote  string    `json:"renal_note,omitempty"`
}

// Evaluation bundles everything computed for one patient snapshot.
type Evaluation struct {
	Renal          RenalAssessment    `json:"renal"`
	Glycemic       GlycemicAssessment `json:"glycemic"`
	Recommendation Recommendation     `json:"recommendation"`
	Guidance       []DrugGuidance     `json:"guidance"`
	NextStep       []string           `json:"next_step"`
}

// BolusInput feeds the bolus calculator. ICR and CF may be zero, in which case
// they are derived from TDD via the 500/1800 rules.
type BolusInput struct {
	TDD            float64 `json:"tdd"`
	CarbsGrams     float64 `json:"carbs_grams"`
	CurrentGlucose float64 `json:"current_glucose"` // mg/dL
	TargetGlucose  float64 `json:"target_glucose"`  // mg/dL
	ICR            float64 `json:"icr,omitempty"`
	CF             float64 `json:"cf,omitempty"`
}

// BolusResult is the computed dose with its components. Units is floored at
// zero and forced to zero outright below the hypoglycemia threshold.
type BolusResult struct {
	TDD             float64  `json:"tdd"`
	ICR             float64  `json:"icr"`
	CF              float64  `json:"cf"`
	CarbUnits       float64  `json:"carb_units"`
	CorrectionUnits float64  `json:"correction_units"`
	Units           float64  `json:"units"`
	Warnings        []string `json:"warnings,omitempty"`
}
