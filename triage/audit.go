package triage

import (
	"fmt"
	"strconv"
	"strings"
)

// AuditRule inspects one encoded row of a dataset.
type AuditRule interface {
	Name() string
	Check(row int, features []float64, label int) error
}

type resetter interface {
	Reset()
}

// QualityIssue is a suspicious row. Row is the zero-based dataset index.
type QualityIssue struct {
	Rule    string `json:"rule"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type AuditStats struct {
	Checked int            `json:"checked"`
	Flagged int            `json:"flagged"`
	Issues  map[string]int `json:"issues"`
}

// Auditor flags implausible or duplicated rows. It never removes rows;
// training always sees the table as loaded.
type Auditor struct {
	rules []AuditRule
	stats AuditStats
}

func NewAuditor() *Auditor {
	auditor := &Auditor{}
	auditor.AddRule(NewPlausibilityRule())
	auditor.AddRule(NewDuplicateRule())
	return auditor
}

func (a *Auditor) AddRule(rule AuditRule) {
	a.rules = append(a.rules, rule)
}

func (a *Auditor) Audit(ds *Dataset) []QualityIssue {
	a.stats = AuditStats{Issues: make(map[string]int)}
	for _, rule := range a.rules {
		if r, ok := rule.(resetter); ok {
			r.Reset()
		}
	}

	var issues []QualityIssue
	for row, features := range ds.Features {
		a.stats.Checked++
		flagged := false
		for _, rule := range a.rules {
			if err := rule.Check(row, features, ds.Labels[row]); err != nil {
				issues = append(issues, QualityIssue{Rule: rule.Name(), Row: row, Message: err.Error()})
				a.stats.Issues[rule.Name()]++
				flagged = true
			}
		}
		if flagged {
			a.stats.Flagged++
		}
	}
	return issues
}

func (a *Auditor) Stats() AuditStats {
	return a.stats
}

// Bound is an inclusive physiological range for one feature column.
type Bound struct {
	Min float64
	Max float64
}

// PlausibilityRule rejects vitals outside human ranges and diastolic
// pressure at or above systolic.
type PlausibilityRule struct {
	Bounds map[string]Bound
}

func NewPlausibilityRule() *PlausibilityRule {
	return &PlausibilityRule{
		Bounds: map[string]Bound{
			FieldAge:                    {0, 120},
			FieldBodyTemperature:        {90, 110},
			FieldHeartRate:              {20, 250},
			FieldRespiratoryRate:        {4, 70},
			FieldBloodPressureSystolic:  {50, 260},
			FieldBloodPressureDiastolic: {20, 160},
			FieldOxygenSaturation:       {50, 100},
			FieldSymptomScore:           {0, 10},
		},
	}
}

func (r *PlausibilityRule) Name() string {
	return "plausibility"
}

func (r *PlausibilityRule) Check(row int, features []float64, _ int) error {
	var problems []string
	for col, name := range featureFields {
		bound, ok := r.Bounds[name]
		if !ok || col >= len(features) {
			continue
		}
		if v := features[col]; v < bound.Min || v > bound.Max {
			problems = append(problems, fmt.Sprintf("%s=%s outside [%g, %g]", name, formatValue(v), bound.Min, bound.Max))
		}
	}
	sys, dia := columnIndex(FieldBloodPressureSystolic), columnIndex(FieldBloodPressureDiastolic)
	if sys < len(features) && dia < len(features) && features[dia] >= features[sys] {
		problems = append(problems, fmt.Sprintf("diastolic %s not below systolic %s", formatValue(features[dia]), formatValue(features[sys])))
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("row %d: %s", row+1, strings.Join(problems, "; "))
}

// DuplicateRule flags rows whose vitals repeat an earlier row, and calls out
// repeats carrying a different label.
type DuplicateRule struct {
	seen map[string]seenRow
}

type seenRow struct {
	row   int
	label int
}

func NewDuplicateRule() *DuplicateRule {
	return &DuplicateRule{seen: make(map[string]seenRow)}
}

func (r *DuplicateRule) Name() string {
	return "duplicate"
}

func (r *DuplicateRule) Reset() {
	r.seen = make(map[string]seenRow)
}

func (r *DuplicateRule) Check(row int, features []float64, label int) error {
	key := fmt.Sprint(features)
	first, exists := r.seen[key]
	if !exists {
		r.seen[key] = seenRow{row: row, label: label}
		return nil
	}
	if first.label != label {
		return fmt.Errorf("row %d: same vitals as row %d with a different label", row+1, first.row+1)
	}
	return fmt.Errorf("row %d: duplicate of row %d", row+1, first.row+1)
}

func columnIndex(field string) int {
	for i, name := range featureFields {
		if name == field {
			return i
		}
	}
	return len(featureFields)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
