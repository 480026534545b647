package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diabetesmx/ada-advisor/internal/clinical"
	"github.com/diabetesmx/ada-advisor/internal/domain"
	"github.com/diabetesmx/ada-advisor/internal/report"
)

// ReportService assembles the evaluation into ordered plain-text lines and
// hands them to the PDF renderer.
type ReportService struct {
	evaluations *EvaluationService
}

func NewReportService(evaluations *EvaluationService) *ReportService {
	return &ReportService{evaluations: evaluations}
}

// BuildDocument evaluates the profile and lays the result out as a report
// document.
func (s *ReportService) BuildDocument(ctx context.Context, profile domain.PatientProfile) (*report.Document, error) {
	eval, err := s.evaluations.Evaluate(ctx, profile)
	if err != nil {
		return nil, err
	}

	doc := &report.Document{
		Title:     "ADA Advisor - Management Summary",
		Generated: time.Now(),
		Fields:    summaryFields(profile, eval),
	}

	if len(eval.Recommendation.Notices) > 0 {
		doc.Sections = append(doc.Sections, report.Section{Heading: "Notices", Bullets: eval.Recommendation.Notices})
	}

	classes := make([]string, 0, len(eval.Recommendation.Classes))
	for _, c := range eval.Recommendation.Classes {
		classes = append(classes, string(c))
	}
	doc.Sections = append(doc.Sections,
		report.Section{Heading: "Recommended classes", Bullets: classes},
		report.Section{Heading: "Rationale", Bullets: eval.Recommendation.Justification},
	)

	dosing := make([]string, 0, len(eval.Guidance))
	for _, g := range eval.Guidance {
		line := fmt.Sprintf("%s: start %s; %s; max %s", g.Name, g.Initiation, g.Titration, g.MaxDose)
		if g.RenalNote != "" {
			line += " [" + g.RenalNote + "]"
		}
		dosing = append(dosing, line)
	}
	doc.Sections = append(doc.Sections,
		report.Section{Heading: "Dosing and titration", Bullets: dosing},
		report.Section{Heading: "Next step", Bullets: eval.NextStep},
	)
	return doc, nil
}

// RenderPDF builds and renders the report for a profile.
func (s *ReportService) RenderPDF(ctx context.Context, profile domain.PatientProfile) ([]byte, error) {
	doc, err := s.BuildDocument(ctx, profile)
	if err != nil {
		return nil, err
	}
	return report.Render(*doc)
}

func summaryFields(p domain.PatientProfile, eval *domain.Evaluation) []report.Field {
	fields := []report.Field{
		{Label: "Name", Value: p.Name},
		{Label: "Age / Sex", Value: fmt.Sprintf("%d / %s", p.Age, p.Sex)},
		{Label: "Diagnosis", Value: strings.ReplaceAll(string(p.Diagnosis), "_", " ")},
		{Label: "Weight / BMI", Value: fmt.Sprintf("%.1f kg / %.1f", p.WeightKg, eval.Renal.BMI)},
	}
	if p.A1cPct != nil {
		fields = append(fields, report.Field{Label: "A1c", Value: fmt.Sprintf("%.1f%%", *p.A1cPct)})
	} else {
		fields = append(fields, report.Field{Label: "A1c", Value: "not measured"})
	}
	fields = append(fields, report.Field{Label: "Glycemic status",
		Value: fmt.Sprintf("severity %s, predominance %s", eval.Glycemic.Severity, eval.Glycemic.Predominance)})
	if p.FastingGlucose != nil {
		fields = append(fields, report.Field{Label: "Fasting glucose",
			Value: fmt.Sprintf("%.0f mg/dL (%.2f mmol/L)", *p.FastingGlucose, clinical.MgDLToMmolL(*p.FastingGlucose))})
	}
	if p.PostprandialGlucose != nil {
		fields = append(fields, report.Field{Label: "2h postprandial",
			Value: fmt.Sprintf("%.0f mg/dL (%.2f mmol/L)", *p.PostprandialGlucose, clinical.MgDLToMmolL(*p.PostprandialGlucose))})
	}
	if eval.Renal.EGFR != nil {
		fields = append(fields, report.Field{Label: "eGFR", Value: fmt.Sprintf("%.1f mL/min/1.73m2", *eval.Renal.EGFR)})
	} else {
		fields = append(fields, report.Field{Label: "eGFR", Value: "unknown (no creatinine)"})
	}

	comorbidities := []string{}
	if p.ASCVD {
		comorbidities = append(comorbidities, "ASCVD")
	}
	if p.HeartFailure {
		comorbidities = append(comorbidities, "heart failure")
	}
	if p.CKD {
		comorbidities = append(comorbidities, "CKD")
	}
	if len(comorbidities) == 0 {
		comorbidities = append(comorbidities, "none")
	}
	fields = append(fields, report.Field{Label: "Comorbidities", Value: strings.Join(comorbidities, ", ")})
	return fields
}
