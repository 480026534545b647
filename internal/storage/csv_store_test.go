package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	s, err := NewCSVStore(filepath.Join(t.TempDir(), "perfiles.csv"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func sampleProfile() *domain.PatientProfile {
	return &domain.PatientProfile{
		Name:            "Maria Lopez",
		Age:             55,
		Sex:             domain.SexFemale,
		Diagnosis:       domain.DiagnosisNonInsulinDependent,
		WeightKg:        80,
		HeightCm:        165,
		A1cPct:          fptr(8.2),
		GlucoseUnit:     domain.UnitMgDL,
		FastingGlucose:  fptr(150),
		SerumCreatinine: fptr(1.2),
		MedicationPlan:  "metformin",
	}
}

func TestSaveAssignsSequentialIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := sampleProfile()
	second := sampleProfile()
	second.Name = "Juan Perez"

	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected IDs 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestSaveOverwritesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProfile()
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.A1cPct = fptr(7.1)
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.A1cPct == nil || *got.A1cPct != 7.1 {
		t.Fatalf("expected overwritten A1c 7.1, got %v", got.A1cPct)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 row after overwrite, got %d", len(all))
	}
}

func TestOptionalFieldsRoundTripAsNil(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProfile()
	p.A1cPct = nil
	p.PostprandialGlucose = nil
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.A1cPct != nil {
		t.Fatalf("absent A1c must stay nil, got %v", *got.A1cPct)
	}
	if got.FastingGlucose == nil || *got.FastingGlucose != 150 {
		t.Fatalf("present fasting glucose lost: %v", got.FastingGlucose)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, 42); !errors.Is(err, apperrors.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if err := s.Delete(ctx, 42); !errors.Is(err, apperrors.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestDeleteRemovesRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := sampleProfile()
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, p.ID); !errors.Is(err, apperrors.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound after delete, got %v", err)
	}
}

// Concurrent writers must serialize behind the store mutex without losing rows.
func TestConcurrentSaves(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := sampleProfile()
			if err := s.Save(ctx, p); err != nil {
				t.Errorf("save: %v", err)
			}
		}()
	}
	wg.Wait()

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(all))
	}
}
