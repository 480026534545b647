// Package storage implements the patient profile store: a flat CSV file with
// a single-writer mutex, and a PostgreSQL backend behind the same interface.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// profileRow mirrors the flat-file column layout. Optional labs are pointers:
// an empty cell round-trips as nil.
type profileRow struct {
	ID                  uint     `csv:"id"`
	Name                string   `csv:"name"`
	Age                 int      `csv:"age"`
	Sex                 string   `csv:"sex"`
	Diagnosis           string   `csv:"diagnosis"`
	WeightKg            float64  `csv:"weight_kg"`
	HeightCm            float64  `csv:"height_cm"`
	A1cPct              *float64 `csv:"a1c_pct,omitempty"`
	TargetA1cPct        *float64 `csv:"target_a1c_pct,omitempty"`
	GlucoseUnit         string   `csv:"glucose_unit"`
	FastingGlucose      *float64 `csv:"fasting_glucose,omitempty"`
	PostprandialGlucose *float64 `csv:"postprandial_glucose,omitempty"`
	SerumCreatinine     *float64 `csv:"serum_creatinine,omitempty"`
	UACR                *float64 `csv:"uacr,omitempty"`
	ASCVD               bool     `csv:"ascvd"`
	HeartFailure        bool     `csv:"heart_failure"`
	CKD                 bool     `csv:"ckd"`
	CatabolicSymptoms   bool     `csv:"catabolic_symptoms"`
	HypoglycemiaRisk    bool     `csv:"hypoglycemia_risk"`
	MedicationPlan      string   `csv:"medication_plan"`
	Notes               string   `csv:"notes"`
	UpdatedAt           string   `csv:"updated_at"`
}

func toRow(p domain.PatientProfile) profileRow {
	return profileRow{
		ID:                  p.ID,
		Name:                p.Name,
		Age:                 p.Age,
		Sex:                 string(p.Sex),
		Diagnosis:           string(p.Diagnosis),
		WeightKg:            p.WeightKg,
		HeightCm:            p.HeightCm,
		A1cPct:              p.A1cPct,
		TargetA1cPct:        p.TargetA1cPct,
		GlucoseUnit:         string(p.GlucoseUnit),
		FastingGlucose:      p.FastingGlucose,
		PostprandialGlucose: p.PostprandialGlucose,
		SerumCreatinine:     p.SerumCreatinine,
		UACR:                p.UACR,
		ASCVD:               p.ASCVD,
		HeartFailure:        p.HeartFailure,
		CKD:                 p.CKD,
		CatabolicSymptoms:   p.CatabolicSymptoms,
		HypoglycemiaRisk:    p.HypoglycemiaRisk,
		MedicationPlan:      p.MedicationPlan,
		Notes:               p.Notes,
		UpdatedAt:           p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func fromRow(r profileRow) domain.PatientProfile {
	updated, _ := time.Parse(time.RFC3339, r.UpdatedAt)
	return domain.PatientProfile{
		ID:                  r.ID,
		Name:                r.Name,
		Age:                 r.Age,
		Sex:                 domain.Sex(r.Sex),
		Diagnosis:           domain.DiagnosisType(r.Diagnosis),
		WeightKg:            r.WeightKg,
		HeightCm:            r.HeightCm,
		A1cPct:              r.A1cPct,
		TargetA1cPct:        r.TargetA1cPct,
		GlucoseUnit:         domain.GlucoseUnit(r.GlucoseUnit),
		FastingGlucose:      r.FastingGlucose,
		PostprandialGlucose: r.PostprandialGlucose,
		SerumCreatinine:     r.SerumCreatinine,
		UACR:                r.UACR,
		ASCVD:               r.ASCVD,
		HeartFailure:        r.HeartFailure,
		CKD:                 r.CKD,
		CatabolicSymptoms:   r.CatabolicSymptoms,
		HypoglycemiaRisk:    r.HypoglycemiaRisk,
		MedicationPlan:      r.MedicationPlan,
		Notes:               r.Notes,
		UpdatedAt:           updated,
	}
}

// CSVStore persists profiles in one flat CSV file. All writes rewrite the
// whole file under a single mutex; the file is the only shared mutable
// resource in the system.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore opens (or creates) the profile file.
func NewCSVStore(path string) (*CSVStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, apperrors.NewStorageError(err)
		}
	}
	s := &CSVStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.writeAll(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVStore) readAll() ([]profileRow, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	defer f.Close()

	rows := []profileRow{}
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return rows, nil
}

func (s *CSVStore) writeAll(rows []profileRow) error {
	if rows == nil {
		rows = []profileRow{}
	}
	f, err := os.Create(s.path)
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&rows, f); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// Save writes a profile. ID 0 assigns the next sequential identifier; an
// existing ID overwrites its row.
func (s *CSVStore) Save(ctx context.Context, profile *domain.PatientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return err
	}

	profile.UpdatedAt = time.Now()
	if profile.ID == 0 {
		var max uint
		for _, r := range rows {
			if r.ID > max {
				max = r.ID
			}
		}
		profile.ID = max + 1
		rows = append(rows, toRow(*profile))
		return s.writeAll(rows)
	}

	for i, r := range rows {
		if r.ID == profile.ID {
			rows[i] = toRow(*profile)
			return s.writeAll(rows)
		}
	}
	rows = append(rows, toRow(*profile))
	return s.writeAll(rows)
}

// Get returns the profile with the given ID.
func (s *CSVStore) Get(ctx context.Context, id uint) (*domain.PatientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.ID == id {
			p := fromRow(r)
			return &p, nil
		}
	}
	return nil, apperrors.ErrProfileNotFound
}

// List returns all stored profiles in file order.
func (s *CSVStore) List(ctx context.Context) ([]domain.PatientProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.PatientProfile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, fromRow(r))
	}
	return profiles, nil
}

// Delete removes the profile with the given ID.
func (s *CSVStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readAll()
	if err != nil {
		return err
	}
	kept := rows[:0]
	found := false
	for _, r := range rows {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return apperrors.ErrProfileNotFound
	}
	return s.writeAll(kept)
}

// Ping verifies the backing file is reachable.
func (s *CSVStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}
