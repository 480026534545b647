package services

import (
	"context"

	"github.com/diabetesmx/ada-advisor/internal/clinical"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// EvaluationService runs the full decision pipeline for one patient snapshot:
// renal and glycemic assessment, drug-class recommendation, dosing guidance
// and next-step escalation.
type EvaluationService struct {
	catalog domain.CatalogProvider
}

func NewEvaluationService(catalog domain.CatalogProvider) *EvaluationService {
	return &EvaluationService{catalog: catalog}
}

// Evaluate computes everything derivable from the profile. Derived values are
// never persisted; each call starts from the stored inputs.
func (s *EvaluationService) Evaluate(ctx context.Context, profile domain.PatientProfile) (*domain.Evaluation, error) {
	if err := ValidateProfile(&profile); err != nil {
		return nil, err
	}

	renal := clinical.AssessRenal(profile)
	glycemic := clinical.Classify(profile.A1cPct, profile.FastingGlucose, profile.PostprandialGlucose)

	rec := clinical.Recommend(clinical.RecommendInput{
		Diagnosis:      profile.Diagnosis,
		Severity:       glycemic.Severity,
		Predominance:   glycemic.Predominance,
		A1c:            profile.A1cPct,
		FastingGlucose: profile.FastingGlucose,
		EGFR:           renal.EGFR,
		BMI:            renal.BMI,
		ASCVD:          profile.ASCVD,
		HeartFailure:   profile.HeartFailure,
		CKD:            profile.CKD,
		Catabolic:      profile.CatabolicSymptoms,
	})
	if s.catalog.Fallback() {
		rec.Notices = append(rec.Notices, "Drug catalog unavailable: using minimal defaults.")
	}

	guidance := make([]domain.DrugGuidance, 0, len(rec.Classes))
	for _, class := range rec.Classes {
		guidance = append(guidance, clinical.GuidanceFor(class, s.catalog.Find(class), profile, renal.EGFR))
	}

	next := clinical.NextStep(clinical.NextStepInput{
		CurrentPlan:  profile.Medications(),
		TargetA1c:    profile.TargetA1cPct,
		ActualA1c:    profile.A1cPct,
		Predominance: glycemic.Predominance,
		EGFR:         renal.EGFR,
		BMI:          renal.BMI,
	})

	return &domain.Evaluation{
		Renal:          renal,
		Glycemic:       glycemic,
		Recommendation: rec,
		Guidance:       guidance,
		NextStep:       next,
	}, nil
}
