package services

import (
	"context"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/clinical"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// defaultTargetGlucose is assumed when no target is supplied (mg/dL).
const defaultTargetGlucose = 110.0

// BolusService computes meal boluses, estimating TDD from a profile when the
// caller does not supply one.
type BolusService struct{}

func NewBolusService() *BolusService {
	return &BolusService{}
}

// Compute validates the input, fills derivable parameters and runs the bolus
// formula. profile may be nil when the caller supplies TDD directly.
func (s *BolusService) Compute(ctx context.Context, in domain.BolusInput, profile *domain.PatientProfile) (*domain.BolusResult, error) {
	if in.CarbsGrams < 0 {
		return nil, apperrors.NewValidationError("carbs_grams must not be negative")
	}
	if in.CurrentGlucose <= 0 {
		return nil, apperrors.NewValidationError("current_glucose must be greater than zero")
	}
	if in.TDD < 0 || in.ICR < 0 || in.CF < 0 {
		return nil, apperrors.NewValidationError("tdd, icr and cf must not be negative")
	}

	if in.TDD == 0 && in.ICR == 0 && in.CF == 0 && profile != nil {
		in.TDD = clinical.EstimateTDD(profile.WeightKg, profile.Diagnosis)
	}
	if in.TargetGlucose <= 0 {
		in.TargetGlucose = defaultTargetGlucose
	}

	result := clinical.Bolus(in)
	return &result, nil
}
