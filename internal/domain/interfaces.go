package domain

import "context"

// ProfileStore persists patient profiles. Save assigns a sequential ID when the
// profile has none and overwrites the stored row otherwise; there is no
// versioning.
type ProfileStore interface {
	Save(ctx context.Context, profile *PatientProfile) error
	Get(ctx context.Context, id uint) (*PatientProfile, error)
	List(ctx context.Context) ([]PatientProfile, error)
	Delete(ctx context.Context, id uint) error
	Ping(ctx context.Context) error
}

// CatalogProvider exposes the read-only drug reference table.
type CatalogProvider interface {
	Entries() []CatalogEntry
	Find(class DrugClass) *CatalogEntry
	Fallback() bool
}
