package clinical

import (
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func TestFiveHundredAndEighteenHundredRules(t *testing.T) {
	if got := ICR(30); got != 16.7 {
		t.Fatalf("ICR(30) = %.1f, want 16.7", got)
	}
	if got := CorrectionFactor(30); got != 60 {
		t.Fatalf("CF(30) = %.0f, want 60", got)
	}
	if ICR(0) != 0 || CorrectionFactor(0) != 0 {
		t.Fatal("zero TDD must yield 0, not a division error")
	}
	if ICR(-5) != 0 || CorrectionFactor(-5) != 0 {
		t.Fatal("negative TDD must yield 0")
	}
}

func TestEstimateTDD(t *testing.T) {
	if got := EstimateTDD(80, domain.DiagnosisInsulinDependent); got != 40 {
		t.Fatalf("expected 0.5x80=40, got %.1f", got)
	}
	if got := EstimateTDD(80, domain.DiagnosisNonInsulinDependent); got != 24 {
		t.Fatalf("expected 0.3x80=24, got %.1f", got)
	}
}

func TestBolusWorkedExample(t *testing.T) {
	// TDD 30 -> ICR 16.7, CF 60; 45 g carbs, 200 current, 110 target.
	res := Bolus(domain.BolusInput{TDD: 30, CarbsGrams: 45, CurrentGlucose: 200, TargetGlucose: 110})
	if res.ICR != 16.7 || res.CF != 60 {
		t.Fatalf("derived ICR/CF = %.1f/%.0f, want 16.7/60", res.ICR, res.CF)
	}
	// 45/16.7 + 90/60 = 4.19 -> nearest half unit is 4.0.
	if res.Units != 4.0 {
		t.Fatalf("bolus = %.1f, want 4.0", res.Units)
	}
}

func TestBolusHypoglycemiaOverride(t *testing.T) {
	// Zero covers an unmeasured reading: it sits below the threshold and must
	// never fall through to a carb-only dose.
	for _, glucose := range []float64{0, 40, 65, 69.9} {
		for _, carbs := range []float64{0, 45, 200} {
			res := Bolus(domain.BolusInput{TDD: 40, CarbsGrams: carbs, CurrentGlucose: glucose, TargetGlucose: 110})
			if res.Units != 0 {
				t.Fatalf("expected 0 units at %v mg/dL with %v g carbs, got %.1f", glucose, carbs, res.Units)
			}
			if len(res.Warnings) == 0 {
				t.Fatalf("expected hypoglycemia warning at %v mg/dL", glucose)
			}
		}
	}
}

func TestBolusMonotonicInCarbs(t *testing.T) {
	prev := -1.0
	for carbs := 0.0; carbs <= 150; carbs += 5 {
		res := Bolus(domain.BolusInput{TDD: 40, CarbsGrams: carbs, CurrentGlucose: 140, TargetGlucose: 110})
		if res.Units < prev {
			t.Fatalf("bolus decreased from %.1f to %.1f at %v g carbs", prev, res.Units, carbs)
		}
		prev = res.Units
	}
}

func TestBolusCorrectionNeverSubtracts(t *testing.T) {
	// Current below target: the correction term is clamped at zero and cannot
	// reduce the carbohydrate dose.
	withLow := Bolus(domain.BolusInput{TDD: 40, CarbsGrams: 60, CurrentGlucose: 80, TargetGlucose: 140})
	neutral := Bolus(domain.BolusInput{TDD: 40, CarbsGrams: 60, CurrentGlucose: 140, TargetGlucose: 140})
	if withLow.Units != neutral.Units {
		t.Fatalf("correction subtracted: %.1f vs %.1f", withLow.Units, neutral.Units)
	}
	if withLow.Units < 0 {
		t.Fatalf("bolus must never be negative, got %.1f", withLow.Units)
	}
}

func TestBolusUndefinedWithoutTDD(t *testing.T) {
	res := Bolus(domain.BolusInput{CarbsGrams: 50, CurrentGlucose: 180, TargetGlucose: 110})
	if res.Units != 0 || len(res.Warnings) == 0 {
		t.Fatalf("expected 0 units and a warning without TDD/ICR/CF, got %+v", res)
	}
}

func TestGlucoseUnitRoundTrip(t *testing.T) {
	for _, v := range []float64{70, 126, 150, 180, 240} {
		back := MmolLToMgDL(MgDLToMmolL(v))
		if diff := back - v; diff > 0.1 || diff < -0.1 {
			t.Fatalf("round trip of %.1f mg/dL drifted to %.2f", v, back)
		}
	}
}
