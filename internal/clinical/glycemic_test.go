package clinical

import (
	"testing"

	"github.com/diabetesmx/ada-advisor/internal/domain"
)

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		a1c  *float64
		want domain.SeverityBand
	}{
		{nil, domain.SeverityUnknown},
		{fptr(5.6), domain.SeverityMild},
		{fptr(7.4), domain.SeverityMild},
		{fptr(7.5), domain.SeverityModerate},
		{fptr(8.9), domain.SeverityModerate},
		{fptr(9.0), domain.SeverityHigh},
		{fptr(9.9), domain.SeverityHigh},
		{fptr(10.0), domain.SeverityVeryHigh},
		{fptr(13.2), domain.SeverityVeryHigh},
	}
	for _, c := range cases {
		got := Classify(c.a1c, nil, nil).Severity
		if got != c.want {
			t.Fatalf("severity for %v = %s, want %s", c.a1c, got, c.want)
		}
	}
}

func TestPredominance(t *testing.T) {
	cases := []struct {
		fasting, post *float64
		want          domain.Predominance
	}{
		{fptr(150), fptr(170), domain.PredomFasting},
		{fptr(110), fptr(200), domain.PredomPostprandial},
		{fptr(150), fptr(190), domain.PredomMixed},
		{fptr(110), fptr(150), domain.PredomMixed},
		{nil, fptr(200), domain.PredomUnknown},
		{fptr(150), nil, domain.PredomUnknown},
		{nil, nil, domain.PredomUnknown},
	}
	for i, c := range cases {
		got := Classify(nil, c.fasting, c.post).Predominance
		if got != c.want {
			t.Fatalf("case %d: predominance = %s, want %s", i, got, c.want)
		}
	}
}
