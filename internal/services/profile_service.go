package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/clinical"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// ProfileService validates, normalizes and persists patient profiles.
type ProfileService struct {
	store domain.ProfileStore
}

func NewProfileService(store domain.ProfileStore) *ProfileService {
	return &ProfileService{store: store}
}

// SaveProfile validates a profile, converts glucose readings entered in
// mmol/L to mg/dL, and writes it to the store.
func (s *ProfileService) SaveProfile(ctx context.Context, profile *domain.PatientProfile) error {
	if err := ValidateProfile(profile); err != nil {
		return err
	}
	NormalizeGlucose(profile)
	if err := s.store.Save(ctx, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// GetProfile returns a stored profile by ID.
func (s *ProfileService) GetProfile(ctx context.Context, id uint) (*domain.PatientProfile, error) {
	return s.store.Get(ctx, id)
}

// ListProfiles returns all stored profiles.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]domain.PatientProfile, error) {
	return s.store.List(ctx)
}

// DeleteProfile removes a stored profile.
func (s *ProfileService) DeleteProfile(ctx context.Context, id uint) error {
	return s.store.Delete(ctx, id)
}

// NormalizeGlucose converts glucose readings to mg/dL in place. The declared
// unit is kept as the user's display preference.
func NormalizeGlucose(p *domain.PatientProfile) {
	if p.GlucoseUnit != domain.UnitMmolL {
		if p.GlucoseUnit == "" {
			p.GlucoseUnit = domain.UnitMgDL
		}
		return
	}
	if p.FastingGlucose != nil {
		v := clinical.MmolLToMgDL(*p.FastingGlucose)
		p.FastingGlucose = &v
	}
	if p.PostprandialGlucose != nil {
		v := clinical.MmolLToMgDL(*p.PostprandialGlucose)
		p.PostprandialGlucose = &v
	}
}

// ValidateProfile rejects out-of-physiological-range input before it can
// reach the formulas.
func ValidateProfile(p *domain.PatientProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("name is required")
	}
	if p.Age < 0 || p.Age > 130 {
		return apperrors.NewValidationError("age must be between 0 and 130")
	}
	if p.Sex != domain.SexFemale && p.Sex != domain.SexMale {
		return apperrors.NewValidationError("sex must be female or male")
	}
	if p.Diagnosis != domain.DiagnosisInsulinDependent && p.Diagnosis != domain.DiagnosisNonInsulinDependent {
		return apperrors.NewValidationError("diagnosis must be insulin_dependent or non_insulin_dependent")
	}
	if p.WeightKg <= 0 || p.WeightKg > 500 {
		return apperrors.NewValidationError("weight_kg must be between 0 and 500")
	}
	if p.HeightCm < 0 || p.HeightCm > 260 {
		return apperrors.NewValidationError("height_cm must be between 0 and 260")
	}
	if p.A1cPct != nil && (*p.A1cPct < 3 || *p.A1cPct > 20) {
		return apperrors.NewValidationError("a1c_pct must be between 3 and 20")
	}
	if p.SerumCreatinine != nil && *p.SerumCreatinine <= 0 {
		return apperrors.NewValidationError("serum_creatinine must be greater than zero")
	}
	if p.FastingGlucose != nil && *p.FastingGlucose <= 0 {
		return apperrors.NewValidationError("fasting_glucose must be greater than zero")
	}
	if p.PostprandialGlucose != nil && *p.PostprandialGlucose <= 0 {
		return apperrors.NewValidationError("postprandial_glucose must be greater than zero")
	}
	if p.UACR != nil && *p.UACR < 0 {
		return apperrors.NewValidationError("uacr must not be negative")
	}
	return nil
}
