// Package catalog loads the drug reference table from a flat CSV file. The
// table is read once and immutable afterwards; a load failure degrades to a
// single-entry metformin fallback instead of failing the evaluation.
package catalog

import (
	"os"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/diabetesmx/ada-advisor/internal/domain"
	"github.com/diabetesmx/ada-advisor/internal/logger"
)

// institutionAll marks a catalog row valid for every institution.
const institutionAll = "TODAS"

// row mirrors the cuadro.csv column layout.
type row struct {
	Class        string `csv:"clase"`
	Name         string `csv:"nombre"`
	CostTier     string `csv:"costo"`
	Availability string `csv:"disp"`
	Renal        string `csv:"renal"`
	Notes        string `csv:"notas"`
	Institution  string `csv:"institucion"`
}

// fallbackEntries is the minimal safe table used when the CSV cannot be read.
var fallbackEntries = []domain.CatalogEntry{
	{
		Class:        domain.ClassMetformin,
		Name:         "Metformina",
		CostTier:     "$",
		Availability: "alta",
		RenalRule:    domain.RenalReduceModerate,
		Notes:        "Plena >=45; 30-44 max 1000 mg/d; <30 contraindicada.",
		Institution:  institutionAll,
	},
}

// Catalog is the loaded reference table.
type Catalog struct {
	entries  []domain.CatalogEntry
	fallback bool
}

// Load reads the catalog CSV. It never fails: on any error the embedded
// fallback table is used and Fallback reports true.
func Load(path string) *Catalog {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Drug catalog unavailable, using fallback table", "path", path, "error", err.Error())
		return &Catalog{entries: fallbackEntries, fallback: true}
	}
	defer f.Close()

	var rows []row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		logger.Warn("Drug catalog unreadable, using fallback table", "path", path, "error", err.Error())
		return &Catalog{entries: fallbackEntries, fallback: true}
	}

	entries := make([]domain.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		class := ParseClass(r.Class)
		if class == "" {
			logger.Warn("Skipping catalog row with unknown class", "class", r.Class)
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			Class:        class,
			Name:         r.Name,
			CostTier:     r.CostTier,
			Availability: r.Availability,
			RenalRule:    parseRenalRule(r.Renal),
			Notes:        r.Notes,
			Institution:  r.Institution,
		})
	}
	if len(entries) == 0 {
		logger.Warn("Drug catalog empty, using fallback table", "path", path)
		return &Catalog{entries: fallbackEntries, fallback: true}
	}

	logger.Info("Drug catalog loaded", "path", path, "entries", len(entries))
	return &Catalog{entries: entries}
}

// FromEntries builds a catalog from an in-memory table.
func FromEntries(entries []domain.CatalogEntry) *Catalog {
	return &Catalog{entries: entries}
}

// Entries returns the full table.
func (c *Catalog) Entries() []domain.CatalogEntry {
	return c.entries
}

// Fallback reports whether the embedded minimal table is in use.
func (c *Catalog) Fallback() bool {
	return c.fallback
}

// Find returns the first entry for a drug class, or nil.
func (c *Catalog) Find(class domain.DrugClass) *domain.CatalogEntry {
	for i := range c.entries {
		if c.entries[i].Class == class {
			return &c.entries[i]
		}
	}
	return nil
}

// WithInstitution returns a view of the catalog restricted to one formulary.
// The fallback flag carries over so degraded mode stays visible downstream.
func (c *Catalog) WithInstitution(institution string) *Catalog {
	if institution == "" {
		return c
	}
	return &Catalog{
		entries:  c.Filter(FilterOptions{Institution: institution}),
		fallback: c.fallback,
	}
}

// FilterOptions narrow the table by formulary context.
type FilterOptions struct {
	Institution  string // empty matches all
	MaxCostTier  string // "$", "$$", "$$$"; empty matches all
	Availability string // minimum tier: alta > media > baja; empty matches all
}

var availabilityRank = map[string]int{"baja": 1, "media": 2, "alta": 3}

// Filter returns the entries visible under the given formulary context.
func (c *Catalog) Filter(opts FilterOptions) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if opts.Institution != "" && !strings.EqualFold(e.Institution, institutionAll) &&
			!strings.EqualFold(e.Institution, opts.Institution) {
			continue
		}
		if opts.MaxCostTier != "" && len(e.CostTier) > len(opts.MaxCostTier) {
			continue
		}
		if opts.Availability != "" && availabilityRank[strings.ToLower(e.Availability)] < availabilityRank[strings.ToLower(opts.Availability)] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ParseClass maps a CSV class label (Spanish or English) onto a DrugClass.
// Unknown labels map to the empty class.
func ParseClass(s string) domain.DrugClass {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metformina", "metformin":
		return domain.ClassMetformin
	case "isglt2", "sglt2", "sglt2i":
		return domain.ClassSGLT2
	case "arglp-1", "arglp1", "glp-1", "glp1", "glp1_ra":
		return domain.ClassGLP1
	case "idpp4", "dpp-4", "dpp4", "dpp4i":
		return domain.ClassDPP4
	case "sulfonilurea", "su":
		return domain.ClassSulfonylurea
	case "tzd", "pioglitazona":
		return domain.ClassTZD
	case "insulina basal", "basal_insulin":
		return domain.ClassBasalInsulin
	case "insulina prandial", "prandial_insulin":
		return domain.ClassPrandialInsulin
	default:
		return ""
	}
}

func parseRenalRule(s string) domain.RenalRule {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ajuste", "adjust":
		return domain.RenalReduceModerate
	case "contraindicado", "contraindicated":
		return domain.RenalContraindicated
	default:
		return domain.RenalNoAdjustment
	}
}

// SeedRows returns the default table written by cmd/seed-catalog when no
// catalog file exists yet.
func SeedRows() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{Class: domain.ClassMetformin, Name: "Metformina", CostTier: "$", Availability: "alta",
			RenalRule: domain.RenalReduceModerate,
			Notes:     "Plena >=45; 30-44 max 1000 mg/d; <30 contraindicada.", Institution: institutionAll},
		{Class: domain.ClassSGLT2, Name: "Empagliflozina", CostTier: "$$", Availability: "media",
			RenalRule: domain.RenalReduceModerate,
			Notes:     "No iniciar con TFG < 20.", Institution: institutionAll},
		{Class: domain.ClassGLP1, Name: "Semaglutida", CostTier: "$$$", Availability: "baja",
			RenalRule: domain.RenalNoAdjustment,
			Notes:     "Preferida sobre iSGLT2 con TFG muy baja.", Institution: institutionAll},
		{Class: domain.ClassDPP4, Name: "Sitagliptina", CostTier: "$$", Availability: "media",
			RenalRule: domain.RenalReduceModerate,
			Notes:     "Ajustar dosis por TFG.", Institution: institutionAll},
		{Class: domain.ClassSulfonylurea, Name: "Glibenclamida", CostTier: "$", Availability: "alta",
			RenalRule: domain.RenalContraindicated,
			Notes:     "Riesgo de hipoglucemia; evitar en ERC avanzada.", Institution: institutionAll},
		{Class: domain.ClassTZD, Name: "Pioglitazona", CostTier: "$", Availability: "media",
			RenalRule: domain.RenalNoAdjustment,
			Notes:     "Evitar en insuficiencia cardiaca.", Institution: institutionAll},
		{Class: domain.ClassBasalInsulin, Name: "Insulina NPH", CostTier: "$", Availability: "alta",
			RenalRule: domain.RenalNoAdjustment,
			Notes:     "Inicio 10 U o 0.1-0.2 U/kg por la noche.", Institution: institutionAll},
		{Class: domain.ClassPrandialInsulin, Name: "Insulina rapida", CostTier: "$", Availability: "alta",
			RenalRule: domain.RenalNoAdjustment,
			Notes:     "4 U o 10% de la basal antes del alimento principal.", Institution: institutionAll},
	}
}

// WriteCSV writes entries to path in the cuadro.csv layout.
func WriteCSV(path string, entries []domain.CatalogEntry) error {
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, row{
			Class:        string(e.Class),
			Name:         e.Name,
			CostTier:     e.CostTier,
			Availability: e.Availability,
			Renal:        string(e.RenalRule),
			Notes:        e.Notes,
			Institution:  e.Institution,
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&rows, f)
}
