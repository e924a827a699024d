// Package health scores source and output data quality and reports the
// problems found as validation issues.
package health

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hrmigrate/hrmigrate/pkg/hierarchy"
	"github.com/hrmigrate/hrmigrate/pkg/models"
)

// Status bands a score
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusWarning   Status = "warning"
	StatusCritical  Status = "critical"
)

// StatusFor bands a 0..100 score
func StatusFor(score int) Status {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 70:
		return StatusGood
	case score >= 50:
		return StatusWarning
	}
	return StatusCritical
}

// Deductions applied by the scorer
const (
	DeductDuplicateKeys    = 15
	DeductHighNullRate     = 10
	DeductSignificantLoss  = 20
	DeductMinorLoss        = 5
	DeductMissingColumn    = 5
	DeductMissingOutput    = 10
	NullRateThreshold      = 30.0
	EmptyOutputThreshold   = 50.0
	SignificantLossPercent = 90.0
	MinorLossPercent       = 95.0
	maxSampleKeys          = 10
)

// Input is everything one scoring pass looks at
type Input struct {
	Sources map[models.FileType]*models.Table
	Files   []FileCheck
	// BaseFile defines the source record count
	BaseFile  models.FileType
	KeyColumn string
	// AllowDuplicateKeys counts base rows rather than unique keys and skips
	// the duplicate check, for files with several records per key
	AllowDuplicateKeys bool

	// Output is the generated table; nil means not generated yet
	Output         *models.Table
	OutputName     string
	CriticalFields []string
	// SkipOutput scores sources only
	SkipOutput bool
}

// FileStats summarizes one source file
type FileStats struct {
	Rows       int `json:"rows"`
	UniqueKeys int `json:"unique_keys"`
}

// TransferStats compares source records with output records
type TransferStats struct {
	SourceCount int                           `json:"source_count"`
	OutputCount int                           `json:"output_count"`
	Transferred int                           `json:"transferred"`
	Lost        int                           `json:"lost"`
	Rate        float64                       `json:"rate"`
	Files       map[models.FileType]FileStats `json:"files,omitempty"`
}

// Report is the outcome of a scoring pass
type Report struct {
	Score           int                      `json:"score"`
	Status          Status                   `json:"status"`
	Ready           bool                     `json:"ready"`
	Issues          []models.ValidationIssue `json:"issues"`
	Errors          []models.ValidationIssue `json:"errors"`
	Warnings        []models.ValidationIssue `json:"warnings"`
	Transfer        *TransferStats           `json:"transfer,omitempty"`
	Recommendations []string                 `json:"recommendations"`
	IssueCounts     map[models.IssueType]int `json:"issue_counts"`
	SeverityCounts  map[models.Severity]int  `json:"severity_counts"`
	GeneratedAt     time.Time                `json:"generated_at"`
}

// Scorer evaluates data health. It holds no state between calls.
type Scorer struct{}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

type pass struct {
	score  int
	issues []models.ValidationIssue
}

func (p *pass) add(issue models.ValidationIssue, deduction int) {
	p.issues = append(p.issues, issue)
	p.score -= deduction
}

// Score runs every source, output and transfer check on one input
func (s *Scorer) Score(in Input) *Report {
	p := &pass{score: 100}
	stats := s.checkSources(p, in)
	if !in.SkipOutput {
		s.checkOutput(p, in)
		if in.Output != nil {
			s.checkTransfer(p, stats, in.Output.Len(), "records", "Data Transfer")
		}
	}
	return finish(p, stats)
}

// ScoreHierarchy scores the org extracts and the leveled result built from
// them. Org units that were never placed count as lost records.
func (s *Scorer) ScoreHierarchy(sources map[models.FileType]*models.Table, result *models.HierarchyResult) *Report {
	p := &pass{score: 100}
	in := Input{
		Sources:    sources,
		Files:      OrgFiles,
		BaseFile:   models.FileTypeHRP1000,
		KeyColumn:  "Object ID",
		SkipOutput: true,
	}
	stats := s.checkSources(p, in)
	if result != nil {
		stats.SourceCount = result.NodesInput
		s.checkTransfer(p, stats, result.NodesEmitted, "org units", "Hierarchy")
		for _, issue := range hierarchy.Diagnose(result) {
			// Duplicate ids were already reported by the source checks
			if issue.Type == models.IssueDuplicateNodeIDs && hasIssue(p.issues, models.IssueDuplicateKeys) {
				continue
			}
			p.add(issue, 0)
		}
	}
	return finish(p, stats)
}

func (s *Scorer) checkSources(p *pass, in Input) *TransferStats {
	stats := &TransferStats{Files: map[models.FileType]FileStats{}}
	var baseKeys map[string]int
	var baseKey string

	for _, f := range in.Files {
		key := f.KeyColumn
		if key == "" {
			key = in.KeyColumn
		}
		t := in.Sources[f.File]
		name := string(f.File)
		if t.IsEmpty() {
			if f.Optional {
				p.add(models.NewIssue(models.IssueMissingOptionalFile, models.SeverityMedium,
					fmt.Sprintf("%s (%s) file is missing", name, f.Label),
					fmt.Sprintf("Fields sourced from %s will be empty in the output.", name),
					fmt.Sprintf("Upload %s if you need %s.", name, strings.ToLower(f.Label)),
				).WithSource(name, ""), 0)
				continue
			}
			p.add(models.NewIssue(models.IssueMissingFile, models.SeverityCritical,
				fmt.Sprintf("%s (%s) file is missing", name, f.Label),
				fmt.Sprintf("%s is required; records cannot be processed without it.", name),
				fmt.Sprintf("Upload the %s extract.", name),
			).WithSource(name, ""), f.Weight)
			continue
		}

		if !t.HasColumn(key) {
			p.add(models.NewIssue(models.IssueMissingRequiredColumn, models.SeverityCritical,
				fmt.Sprintf("Missing key column: %s", key),
				fmt.Sprintf("%s must have a %q column to link its records.", name, key),
				fmt.Sprintf("Add the %q column to the %s extract.", key, name),
			).WithSource(name, key), f.Weight)
			continue
		}
		for _, col := range f.Columns {
			if !t.HasColumn(col) {
				p.add(models.NewIssue(models.IssueMissingRequiredColumn, models.SeverityHigh,
					fmt.Sprintf("Missing required column: %s", col),
					fmt.Sprintf("%s must have a %q column.", name, col),
					fmt.Sprintf("Add the %q column to the %s extract.", col, name),
				).WithSource(name, col), DeductMissingColumn)
			}
		}

		counts, empty := keyCounts(t, key)
		stats.Files[f.File] = FileStats{Rows: t.Len(), UniqueKeys: len(counts)}

		if f.File == in.BaseFile {
			baseKeys, baseKey = counts, key
			s.checkBase(p, in, t, name, key, counts, empty, f.Weight)
			if in.AllowDuplicateKeys {
				stats.SourceCount = t.Len() - empty
			} else {
				stats.SourceCount = len(counts)
			}
		}
	}

	// Linked files are compared once the base is known
	if baseKeys != nil {
		for _, f := range in.Files {
			t := in.Sources[f.File]
			key := f.KeyColumn
			if key == "" {
				key = baseKey
			}
			if !f.Linked || t.IsEmpty() || !t.HasColumn(key) {
				continue
			}
			checkOrphans(p, t, string(f.File), key, baseKeys)
		}
	}
	return stats
}

func (s *Scorer) checkBase(p *pass, in Input, t *models.Table, name, key string, counts map[string]int, empty, weight int) {
	if empty > 0 {
		p.add(models.NewIssue(models.IssueEmptyKeys, models.SeverityCritical,
			fmt.Sprintf("%d records have empty IDs", empty),
			fmt.Sprintf("Found %d rows in %s where %q is empty. These records cannot be processed.", empty, name, key),
			fmt.Sprintf("Fill in the missing IDs in the %s extract.", name),
		).WithSource(name, key).WithDetails(map[string]any{
			"empty_count": empty,
			"total_rows":  t.Len(),
		}), weight/2)
	}

	if !in.AllowDuplicateKeys {
		duplicates := 0
		var ids []string
		for _, k := range sortedKeys(t, key) {
			if n := counts[k]; n > 1 {
				duplicates += n - 1
				ids = append(ids, k)
			}
		}
		if duplicates > 0 {
			p.add(models.NewIssue(models.IssueDuplicateKeys, models.SeverityMedium,
				fmt.Sprintf("%d duplicate IDs found", duplicates),
				fmt.Sprintf("%d IDs appear more than once in %s; %d extra records in total.", len(ids), name, duplicates),
				fmt.Sprintf("Remove duplicate records from the %s extract.", name),
			).WithSource(name, key).WithDetails(map[string]any{
				"duplicate_count": duplicates,
				"duplicate_ids":   capIDs(ids),
			}), DeductDuplicateKeys)
		}
	}

	emptyCells, total := t.EmptyCells()
	if total > 0 {
		pct := float64(emptyCells) / float64(total) * 100
		if pct > NullRateThreshold {
			p.add(models.NewIssue(models.IssueHighNullRate, models.SeverityMedium,
				fmt.Sprintf("%s has %.1f%% missing data", name, pct),
				fmt.Sprintf("%d of %d cells in %s are empty.", emptyCells, total, name),
				"Check the extract selection; required fields may not have been exported.",
			).WithSource(name, "").WithDetails(map[string]any{
				"empty_percentage": round1(pct),
				"empty_cells":      emptyCells,
				"total_cells":      total,
			}), DeductHighNullRate)
		}
	}
}

func checkOrphans(p *pass, t *models.Table, name, key string, baseKeys map[string]int) {
	var orphans []string
	seen := map[string]bool{}
	for _, k := range sortedKeys(t, key) {
		if _, ok := baseKeys[k]; !ok && !seen[k] {
			seen[k] = true
			orphans = append(orphans, k)
		}
	}
	if len(orphans) == 0 {
		return
	}
	p.add(models.NewIssue(models.IssueOrphanedKeys, models.SeverityHigh,
		fmt.Sprintf("%d records in %s not found in the base file", len(orphans), name),
		fmt.Sprintf("%s contains IDs that do not exist in the base extract. This data cannot be linked.", name),
		fmt.Sprintf("Either add these records to the base extract or remove them from %s.", name),
	).WithSource(name, key).WithDetails(map[string]any{
		"orphaned_count": len(orphans),
		"orphaned_ids":   capIDs(orphans),
	}), 0)
}

func (s *Scorer) checkOutput(p *pass, in Input) {
	name := in.OutputName
	if name == "" {
		name = "Output"
	}
	if in.Output == nil {
		p.add(models.NewIssue(models.IssueMissingOutput, models.SeverityMedium,
			"Output file not generated",
			fmt.Sprintf("No %s has been generated yet.", name),
			"Generate the output before exporting.",
		).WithSource("Output", name), DeductMissingOutput)
		return
	}
	if in.Output.Len() == 0 {
		p.add(models.NewIssue(models.IssueEmptyOutput, models.SeverityCritical,
			"Output file is empty",
			fmt.Sprintf("%s was generated but contains no records.", name),
			"Check source data quality and the mapping configuration.",
		).WithSource("Output", name), 0)
		return
	}
	for _, field := range in.CriticalFields {
		if !in.Output.HasColumn(field) {
			p.add(models.NewIssue(models.IssueMissingCriticalField, models.SeverityHigh,
				fmt.Sprintf("Missing critical field: %s", field),
				fmt.Sprintf("%s has no %q column, which every record needs.", name, field),
				"Add a mapping rule for the field.",
			).WithSource("Output", field), 0)
		}
	}
	emptyCells, total := in.Output.EmptyCells()
	if total > 0 {
		pct := float64(emptyCells) / float64(total) * 100
		if pct > EmptyOutputThreshold {
			p.add(models.NewIssue(models.IssueHighEmptyOutput, models.SeverityMedium,
				fmt.Sprintf("%.1f%% of output data is empty", pct),
				"More than half of the output fields are empty, which points at mapping or source data problems.",
				"Review the mapping configuration and source data quality.",
			).WithSource("Output", name).WithDetails(map[string]any{
				"empty_percentage": round1(pct),
				"empty_cells":      emptyCells,
				"total_cells":      total,
			}), 0)
		}
	}
}

// checkTransfer compares record counts; stats.SourceCount must be set
func (s *Scorer) checkTransfer(p *pass, stats *TransferStats, outputCount int, unit, source string) {
	stats.OutputCount = outputCount
	if stats.SourceCount <= 0 {
		return
	}
	src := stats.SourceCount
	stats.Rate = math.Min(100, math.Max(0, float64(outputCount)/float64(src)*100))
	stats.Rate = round1(stats.Rate)

	details := map[string]any{
		"source_count": src,
		"output_count": outputCount,
		"rate":         stats.Rate,
	}
	if outputCount > src {
		stats.Transferred = src
		stats.Lost = 0
		p.add(models.NewIssue(models.IssueProcessingAnomaly, models.SeverityHigh,
			fmt.Sprintf("Output has more %s (%d) than source (%d)", unit, outputCount, src),
			"Duplicate records were probably generated during processing.",
			"Check the merge configuration and source data for duplicates.",
		).WithSource(source, "").WithDetails(details), 0)
		return
	}

	stats.Transferred = outputCount
	stats.Lost = src - outputCount
	details["lost"] = stats.Lost
	switch {
	case stats.Lost == 0:
	case stats.Rate < SignificantLossPercent:
		p.add(models.NewIssue(models.IssueSignificantDataLoss, models.SeverityHigh,
			fmt.Sprintf("Lost %d %s during processing", stats.Lost, unit),
			fmt.Sprintf("Started with %d %s but only %d reached the output, a %.1f%% loss.", src, unit, outputCount, 100-stats.Rate),
			"Check for data quality issues in the source files or processing errors.",
		).WithSource(source, "").WithDetails(details), DeductSignificantLoss)
	case stats.Rate < MinorLossPercent:
		p.add(models.NewIssue(models.IssueMinorDataLoss, models.SeverityMedium,
			fmt.Sprintf("Lost %d %s during processing", stats.Lost, unit),
			fmt.Sprintf("A small number of %s did not reach the output.", unit),
			"Review the source data for incomplete or invalid records.",
		).WithSource(source, "").WithDetails(details), DeductMinorLoss)
	}
}

func finish(p *pass, stats *TransferStats) *Report {
	score := p.score
	if score < 0 {
		score = 0
	}
	r := &Report{
		Score:          score,
		Status:         StatusFor(score),
		Issues:         p.issues,
		Errors:         []models.ValidationIssue{},
		Warnings:       []models.ValidationIssue{},
		IssueCounts:    map[models.IssueType]int{},
		SeverityCounts: map[models.Severity]int{},
		GeneratedAt:    time.Now().UTC(),
	}
	if r.Issues == nil {
		r.Issues = []models.ValidationIssue{}
	}
	if stats != nil && (stats.SourceCount > 0 || stats.OutputCount > 0) {
		r.Transfer = stats
	}
	for _, issue := range p.issues {
		r.IssueCounts[issue.Type]++
		r.SeverityCounts[issue.Severity]++
		if issue.Severity.IsBlocking() {
			r.Errors = append(r.Errors, issue)
		} else {
			r.Warnings = append(r.Warnings, issue)
		}
	}
	r.Ready = len(r.Errors) == 0
	r.Recommendations = recommend(r)
	return r
}

func recommend(r *Report) []string {
	var out []string
	if r.Score < 70 {
		out = append(out, "Fix critical issues before processing the data.")
	}
	if len(r.Errors) > 0 {
		out = append(out, fmt.Sprintf("Resolve %d blocking issues before exporting.", len(r.Errors)))
	}
	if len(r.Warnings) > 0 {
		out = append(out, "Review warnings to improve data quality.")
	}
	if len(r.Issues) == 0 {
		out = append(out, "Data looks good and is ready for processing.")
	}
	return out
}

// keyCounts counts occurrences of each non-empty key and the empty ones
func keyCounts(t *models.Table, key string) (map[string]int, int) {
	counts := make(map[string]int, t.Len())
	empty := 0
	for _, row := range t.Rows {
		k := models.NormalizeID(row[key])
		if k == "" {
			empty++
			continue
		}
		counts[k]++
	}
	return counts, empty
}

// sortedKeys lists distinct non-empty keys in first-seen order
func sortedKeys(t *models.Table, key string) []string {
	seen := make(map[string]bool, t.Len())
	var out []string
	for _, row := range t.Rows {
		k := models.NormalizeID(row[key])
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func hasIssue(issues []models.ValidationIssue, typ models.IssueType) bool {
	for _, i := range issues {
		if i.Type == typ {
			return true
		}
	}
	return false
}

func capIDs(ids []string) []string {
	if len(ids) > maxSampleKeys {
		return ids[:maxSampleKeys]
	}
	return ids
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
