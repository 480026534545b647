package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cuadro.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadParsesSpanishHeaders(t *testing.T) {
	path := writeCatalogFile(t, `clase,nombre,costo,disp,renal,notas,institucion
Metformina,Metformina,$,alta,ajuste,"Plena >=45; 30-44 max 1000 mg/d; <30 contraindicada.",TODAS
iSGLT2,Empagliflozina,$$,media,contraindicado,"No iniciar con TFGe <20.",IMSS
arGLP-1,Semaglutida,$$$,baja,,"Beneficio CV demostrado.",TODAS
`)
	c := Load(path)
	if c.Fallback() {
		t.Fatal("expected a real catalog, got fallback")
	}
	if len(c.Entries()) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(c.Entries()))
	}

	met := c.Find(domain.ClassMetformin)
	if met == nil || met.RenalRule != domain.RenalReduceModerate {
		t.Fatalf("unexpected metformin entry: %+v", met)
	}
	sglt := c.Find(domain.ClassSGLT2)
	if sglt == nil || sglt.RenalRule != domain.RenalContraindicated || sglt.Name != "Empagliflozina" {
		t.Fatalf("unexpected SGLT2 entry: %+v", sglt)
	}
	glp := c.Find(domain.ClassGLP1)
	if glp == nil || glp.RenalRule != domain.RenalNoAdjustment {
		t.Fatalf("unexpected GLP-1 entry: %+v", glp)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "does-not-exist.csv"))
	if !c.Fallback() {
		t.Fatal("expected fallback catalog")
	}
	if len(c.Entries()) != 1 || c.Entries()[0].Class != domain.ClassMetformin {
		t.Fatalf("fallback must be the single metformin entry, got %+v", c.Entries())
	}
}

func TestLoadSkipsUnknownClasses(t *testing.T) {
	path := writeCatalogFile(t, `clase,nombre,costo,disp,renal,notas,institucion
Metformina,Metformina,$,alta,ajuste,,TODAS
Homeopatia,Sin efecto,$,alta,,,TODAS
`)
	c := Load(path)
	if len(c.Entries()) != 1 {
		t.Fatalf("expected the unknown class to be skipped, got %d entries", len(c.Entries()))
	}
}

func TestFilterByInstitutionCostAvailability(t *testing.T) {
	c := FromEntries([]domain.CatalogEntry{
		{Class: domain.ClassMetformin, CostTier: "$", Availability: "alta", Institution: "TODAS"},
		{Class: domain.ClassSGLT2, CostTier: "$$", Availability: "media", Institution: "IMSS"},
		{Class: domain.ClassGLP1, CostTier: "$$$", Availability: "baja", Institution: "ISSSTE"},
	})

	got := c.Filter(FilterOptions{Institution: "IMSS"})
	if len(got) != 2 {
		t.Fatalf("expected TODAS + IMSS rows, got %d", len(got))
	}

	got = c.Filter(FilterOptions{MaxCostTier: "$$"})
	if len(got) != 2 {
		t.Fatalf("expected two rows at or under $$, got %d", len(got))
	}

	got = c.Filter(FilterOptions{Availability: "media"})
	if len(got) != 2 {
		t.Fatalf("expected alta+media rows, got %d", len(got))
	}
}

func TestWithInstitution(t *testing.T) {
	c := FromEntries([]domain.CatalogEntry{
		{Class: domain.ClassMetformin, Name: "Metformina", Institution: "TODAS"},
		{Class: domain.ClassSGLT2, Name: "Empagliflozina", Institution: "IMSS"},
		{Class: domain.ClassGLP1, Name: "Semaglutida", Institution: "ISSSTE"},
	})

	scoped := c.WithInstitution("IMSS")
	if len(scoped.Entries()) != 2 {
		t.Fatalf("expected TODAS+IMSS rows, got %d", len(scoped.Entries()))
	}
	if scoped.Find(domain.ClassGLP1) != nil {
		t.Fatal("ISSSTE-only row should be hidden")
	}
	if c.WithInstitution("") != c {
		t.Fatal("empty institution should return the same catalog")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cuadro.csv")
	if err := WriteCSV(path, SeedRows()); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Load(path)
	if c.Fallback() {
		t.Fatal("seeded file should load as a real catalog")
	}
	if c.Find(domain.ClassMetformin) == nil {
		t.Fatal("expected metformin in seeded catalog")
	}
}
