package clinical

import "github.com/diabetesmx/ada-advisor/internal/domain"

// A1c severity cutoffs (%).
const (
	a1cVeryHigh = 10.0
	a1cHigh     = 9.0
	a1cModerate = 7.5
)

// Glucose predominance cutoffs (mg/dL).
const (
	fastingHigh      = 130.0
	postprandialHigh = 180.0
)

// Classify maps A1c and glucose readings onto a severity band and a
// predominance pattern. An absent A1c yields SeverityUnknown, never an
// implicit mild; predominance requires both readings and is Unknown otherwise.
func Classify(a1c, fasting, postprandial *float64) domain.GlycemicAssessment {
	return domain.GlycemicAssessment{
		Severity:     severity(a1c),
		Predominance: predominance(fasting, postprandial),
	}
}

func severity(a1c *float64) domain.SeverityBand {
	switch {
	case a1c == nil:
		return domain.SeverityUnknown
	case *a1c >= a1cVeryHigh:
		return domain.SeverityVeryHigh
	case *a1c >= a1cHigh:
		return domain.SeverityHigh
	case *a1c >= a1cModerate:
		return domain.SeverityModerate
	default:
		return domain.SeverityMild
	}
}

func predominance(fasting, postprandial *float64) domain.Predominance {
	if fasting == nil || postprandial == nil {
		return domain.PredomUnknown
	}
	switch {
	case *fasting >= fastingHigh && *postprandial <= postprandialHigh:
		return domain.PredomFasting
	case *fasting < fastingHigh && *postprandial > postprandialHigh:
		return domain.PredomPostprandial
	default:
		return domain.PredomMixed
	}
}
