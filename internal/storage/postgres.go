package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/diabetesmx/ada-advisor/internal/apperrors"
	"github.com/diabetesmx/ada-advisor/internal/config"
	"github.com/diabetesmx/ada-advisor/internal/domain"
)

// profileRecord is the gorm model backing PatientProfile.
type profileRecord struct {
	ID                  uint `gorm:"primaryKey"`
	Name                string
	Age                 int
	Sex                 string
	Diagnosis           string
	WeightKg            float64
	HeightCm            float64
	A1cPct              *float64
	TargetA1cPct        *float64
	GlucoseUnit         string
	FastingGlucose      *float64
	PostprandialGlucose *float64
	SerumCreatinine     *float64
	UACR                *float64
	ASCVD               bool
	HeartFailure        bool
	CKD                 bool
	CatabolicSymptoms   bool
	HypoglycemiaRisk    bool
	MedicationPlan      string
	Notes               string
	UpdatedAt           time.Time
}

func (profileRecord) TableName() string { return "patient_profiles" }

func toRecord(p domain.PatientProfile) profileRecord {
	return profileRecord{
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
		UpdatedAt:           p.UpdatedAt,
	}
}

func fromRecord(r profileRecord) domain.PatientProfile {
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
		UpdatedAt:           r.UpdatedAt,
	}
}

// PostgresStore is the PostgreSQL-backed profile store.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects and migrates the profile table.
func NewPostgresStore(cfg config.DBConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&profileRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Save creates or overwrites a profile row.
func (s *PostgresStore) Save(ctx context.Context, profile *domain.PatientProfile) error {
	profile.UpdatedAt = time.Now()
	record := toRecord(*profile)
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return apperrors.NewStorageError(err)
	}
	profile.ID = record.ID
	return nil
}

// Get returns the profile with the given ID.
func (s *PostgresStore) Get(ctx context.Context, id uint) (*domain.PatientProfile, error) {
	var record profileRecord
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.NewStorageError(err)
	}
	p := fromRecord(record)
	return &p, nil
}

// List returns all profiles ordered by ID.
func (s *PostgresStore) List(ctx context.Context) ([]domain.PatientProfile, error) {
	var records []profileRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	profiles := make([]domain.PatientProfile, 0, len(records))
	for _, r := range records {
		profiles = append(profiles, fromRecord(r))
	}
	return profiles, nil
}

// Delete removes the profile with the given ID.
func (s *PostgresStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&profileRecord{}, id)
	if result.Error != nil {
		return apperrors.NewStorageError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrProfileNotFound
	}
	return nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.NewStorageError(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}
