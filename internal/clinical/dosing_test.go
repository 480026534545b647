package clinical

import (
	"strings"
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func TestInsulinStartUnits(t *testing.T) {
	cases := []struct {
		weight   float64
		a1c      *float64
		hypoRisk bool
		want     int
	}{
		{80, nil, false, 10},          // 0.1x80=8 -> floor of 10
		{120, nil, false, 12},         // 0.1x120=12
		{80, fptr(9.5), false, 16},    // doubled coefficient
		{80, fptr(9.5), true, 10},     // hypo risk keeps 0.1x
		{80, fptr(8.0), false, 10},    // below the doubling cutoff
		{50, fptr(10.2), false, 10},   // 0.2x50=10, floor unchanged
	}
	for i, c := range cases {
		if got := InsulinStartUnits(c.weight, c.a1c, c.hypoRisk); got != c.want {
			t.Fatalf("case %d: got %d units, want %d", i, got, c.want)
		}
	}
}

func TestGuidanceForBasalUsesWeight(t *testing.T) {
	p := domain.PatientProfile{WeightKg: 120}
	g := GuidanceFor(domain.ClassBasalInsulin, nil, p, nil)
	if !strings.Contains(g.Initiation, "12 units") {
		t.Fatalf("expected weight-based start dose, got %q", g.Initiation)
	}
	if !strings.Contains(g.Titration, "2 units every 3 days") {
		t.Fatalf("unexpected titration text: %q", g.Titration)
	}
}

func TestGuidanceRenalNotes(t *testing.T) {
	p := domain.PatientProfile{WeightKg: 70}

	g := GuidanceFor(domain.ClassMetformin, nil, p, fptr(38))
	if !strings.Contains(g.RenalNote, "1000 mg/day") {
		t.Fatalf("expected reduced-dose note at eGFR 38, got %q", g.RenalNote)
	}

	g = GuidanceFor(domain.ClassMetformin, nil, p, fptr(22))
	if !strings.Contains(g.RenalNote, "Contraindicated") {
		t.Fatalf("expected contraindication note at eGFR 22, got %q", g.RenalNote)
	}

	g = GuidanceFor(domain.ClassSGLT2, nil, p, fptr(15))
	if !strings.Contains(g.RenalNote, "Do not initiate") {
		t.Fatalf("expected SGLT2 floor note at eGFR 15, got %q", g.RenalNote)
	}

	g = GuidanceFor(domain.ClassMetformin, nil, p, nil)
	if !strings.Contains(g.RenalNote, "unverified") {
		t.Fatalf("expected unverified-renal note for unknown eGFR, got %q", g.RenalNote)
	}
}

func TestGuidanceCatalogOverridesName(t *testing.T) {
	entry := &domain.CatalogEntry{Class: domain.ClassMetformin, Name: "Metformina", Notes: "Plena >=45; 30-44 max 1000 mg/d; <30 contraindicada."}
	g := GuidanceFor(domain.ClassMetformin, entry, domain.PatientProfile{}, fptr(60))
	if g.Name != "Metformina" {
		t.Fatalf("expected catalog name, got %q", g.Name)
	}
}

func TestNextStepDecisionTree(t *testing.T) {
	atTarget := NextStep(NextStepInput{ActualA1c: fptr(6.8), TargetA1c: fptr(7.0)})
	if len(atTarget) != 2 || !strings.Contains(atTarget[1], "8-12 weeks") {
		t.Fatalf("expected adherence + re-evaluation advice, got %v", atTarget)
	}

	onBasalPost := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassBasalInsulin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomPostprandial,
	})
	if !strings.Contains(onBasalPost[0], "prandial") {
		t.Fatalf("expected prandial add-on, got %v", onBasalPost)
	}

	onBasalFasting := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassBasalInsulin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomFasting,
	})
	if !strings.Contains(onBasalFasting[0], "+2 units every 3 days") {
		t.Fatalf("expected basal titration, got %v", onBasalFasting)
	}

	noInsulinFasting := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassMetformin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomFasting,
	})
	if !strings.Contains(noInsulinFasting[0], "basal insulin") {
		t.Fatalf("expected basal initiation, got %v", noInsulinFasting)
	}

	obese := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassMetformin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomMixed,
		BMI:          32,
	})
	if !strings.Contains(obese[0], "GLP-1") {
		t.Fatalf("expected GLP-1 add-on for BMI >= 30, got %v", obese)
	}

	renalOK := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassMetformin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomMixed,
		BMI:          25,
		EGFR:         fptr(55),
	})
	if !strings.Contains(renalOK[0], "SGLT2") {
		t.Fatalf("expected SGLT2 add-on, got %v", renalOK)
	}

	renalBad := NextStep(NextStepInput{
		CurrentPlan:  []domain.DrugClass{domain.ClassMetformin},
		ActualA1c:    fptr(8.4),
		Predominance: domain.PredomMixed,
		BMI:          25,
		EGFR:         fptr(15),
	})
	if !strings.Contains(renalBad[0], "basal insulin") {
		t.Fatalf("expected insulin when no oral agent fits, got %v", renalBad)
	}

	missing := NextStep(NextStepInput{})
	if !strings.Contains(missing[0], "Obtain an A1c") {
		t.Fatalf("expected missing-A1c advice, got %v", missing)
	}
}
