package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func TestComputeBolusWorkedExample(t *testing.T) {
	svc := NewBolusService()
	res, err := svc.Compute(context.Background(), domain.BolusInput{
		TDD: 30, CarbsGrams: 45, CurrentGlucose: 200, TargetGlucose: 110,
	}, nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.Units != 4.0 {
		t.Fatalf("expected 4.0 units, got %.1f", res.Units)
	}
}

func TestComputeBolusRejectsMissingGlucose(t *testing.T) {
	svc := NewBolusService()
	for _, glucose := range []float64{0, -10} {
		_, err := svc.Compute(context.Background(), domain.BolusInput{
			TDD: 40, CarbsGrams: 60, CurrentGlucose: glucose, TargetGlucose: 110,
		}, nil)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeValidation {
			t.Fatalf("expected validation error for glucose %v, got %v", glucose, err)
		}
	}
}

func TestComputeBolusEstimatesTDDFromProfile(t *testing.T) {
	svc := NewBolusService()
	profile := referenceProfile()
	profile.Diagnosis = domain.DiagnosisInsulinDependent // 0.5 x 80 kg = 40 U

	res, err := svc.Compute(context.Background(), domain.BolusInput{
		CarbsGrams: 50, CurrentGlucose: 180,
	}, &profile)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.TDD != 40 {
		t.Fatalf("expected estimated TDD 40, got %.1f", res.TDD)
	}
	if res.Units <= 0 {
		t.Fatalf("expected a positive bolus, got %.1f", res.Units)
	}
}
