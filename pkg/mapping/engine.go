// Package mapping turns source tables into output tables by applying
// administrator-configured column mapping rules.
package mapping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/hrmigrate/hrmigrate/pkg/models"
	"github.com/hrmigrate/hrmigrate/pkg/transform"
)

// Sources is the row-aligned input of one mapping run. Output has exactly one
// row per Primary row.
type Sources struct {
	Primary     *models.Table
	PrimaryFile models.FileType
	// Columns maps each file merged into Primary from its own column names
	// to the merged ones, as recorded by Merge
	Columns map[models.FileType]map[string]string
}

// Options tunes a mapping run
type Options struct {
	// Name of the produced table; the scope when empty
	Name string
	// Template fields are always emitted, in template order, before any
	// additional mapped columns
	Template []models.TemplateField
	// MaxRows limits the run to the first rows of Primary (preview). Zero maps everything.
	MaxRows       int
	StatusVariant transform.StatusVariant
	Lookup        transform.Lookuper
	Registry      *transform.Registry
}

// Output is a produced table plus the per-rule transformation log
type Output struct {
	Table *models.Table              `json:"table"`
	Log   []models.TransformLogEntry `json:"log"`
}

// Failed returns the log entries of rules that did not map cleanly
func (o *Output) Failed() []models.TransformLogEntry {
	var out []models.TransformLogEntry
	for _, e := range o.Log {
		if e.Status != models.TransformStatusSuccess {
			out = append(out, e)
		}
	}
	return out
}

// Engine applies mapping rules. It holds no per-run state.
type Engine struct {
	log *logrus.Entry
}

// NewEngine creates a mapping engine
func NewEngine() *Engine {
	return &Engine{log: logrus.WithField("component", "mapping")}
}

// BuildOutput maps src through the rules that apply to scope. Rule problems
// are configuration errors and stop the run before any output is produced;
// value problems are absorbed and reported in the log.
func (e *Engine) BuildOutput(rules []models.MappingRule, src Sources, scope models.Scope, opts Options) (*Output, error) {
	if src.Primary == nil {
		return nil, models.MissingFileError(string(src.PrimaryFile))
	}
	active := FilterRules(rules, scope)
	if err := ValidateRules(active, opts.Registry); err != nil {
		return nil, err
	}

	primary := src.Primary
	if opts.MaxRows > 0 {
		primary = primary.Head(opts.MaxRows)
	}
	name := opts.Name
	if name == "" {
		name = string(scope)
	}

	table := models.NewTable(name, outputColumns(active, opts.Template)...)
	n := primary.Len()
	for i := 0; i < n; i++ {
		table.Append(make(models.Row, len(table.Columns)))
	}

	log := make([]models.TransformLogEntry, 0, len(active))
	for _, rule := range active {
		values, entry := e.mapRule(rule, src, primary, opts)
		for i, v := range values {
			table.Rows[i][rule.TargetField] = v
		}
		log = append(log, entry)
	}
	for _, f := range opts.Template {
		for _, row := range table.Rows {
			if _, ok := row[f.TargetField]; !ok {
				row[f.TargetField] = ""
			}
		}
	}
	return &Output{Table: table, Log: log}, nil
}

// mapRule produces one output column
func (e *Engine) mapRule(rule models.MappingRule, src Sources, primary *models.Table, opts Options) ([]string, models.TransformLogEntry) {
	n := primary.Len()
	entry := models.TransformLogEntry{
		TargetField:    rule.TargetField,
		SourceFile:     rule.SourceFile,
		SourceColumn:   rule.SourceColumn,
		Transformation: rule.Transformation,
		Status:         models.TransformStatusSuccess,
		Rows:           n,
	}

	series, found := resolveColumn(primary, src, rule.SourceFile, rule.SourceColumn)
	if !found {
		series = constantSeries(rule.DefaultValue, n)
		if rule.SourceColumn != "" {
			entry.Status = models.TransformStatusMissing
			entry.Message = fmt.Sprintf("column %q not found in %s; default used", rule.SourceColumn, sourceName(rule, src))
		}
	}
	var secondary []string
	if rule.Transformation == models.TransformConcatenate && rule.SecondaryColumn != "" {
		secondary, _ = resolveColumn(primary, src, rule.SourceFile, rule.SecondaryColumn)
	}

	cfg := transform.ConfigFromRule(rule)
	cfg.StatusVariant = opts.StatusVariant
	cfg.Lookup = opts.Lookup
	cfg.Registry = opts.Registry

	out := make([]string, n)
	fallbacks := 0
	for i := 0; i < n; i++ {
		sec := ""
		if secondary != nil {
			sec = secondary[i]
		}
		v, err := transform.Try(series[i], rule.Transformation, cfg, sec)
		if err != nil {
			if isRuleFailure(err) {
				e.log.WithFields(logrus.Fields{
					"target_field":   rule.TargetField,
					"transformation": rule.Transformation,
					"row":            i,
				}).WithError(err).Warn("Transformation failed; column filled with default")
				entry.Status = models.TransformStatusError
				entry.Message = err.Error()
				return constantSeries(rule.DefaultValue, n), entry
			}
			fallbacks++
		}
		if strings.TrimSpace(v) == "" && rule.DefaultValue != "" {
			v = rule.DefaultValue
		}
		out[i] = v
	}
	if fallbacks > 0 && entry.Status == models.TransformStatusSuccess {
		entry.Message = fmt.Sprintf("%d of %d values kept unchanged after failed transformation", fallbacks, n)
	}
	return out, entry
}

// isRuleFailure separates failures that invalidate a whole column from
// single values that could not be interpreted
func isRuleFailure(err error) bool {
	return errors.Is(err, transform.ErrCustomFailed) ||
		errors.Is(err, transform.ErrUnknownFunc) ||
		errors.Is(err, transform.ErrUnknownKind)
}

// resolveColumn finds the series for column of file in the primary table.
// Columns of a merged file are only read through the names it contributed.
func resolveColumn(primary *models.Table, src Sources, file models.FileType, column string) ([]string, bool) {
	if column == "" {
		return nil, false
	}
	if file != "" && file != src.PrimaryFile {
		merged, ok := src.Columns[file][column]
		if !ok || !primary.HasColumn(merged) {
			return nil, false
		}
		return primary.Column(merged), true
	}
	if primary.HasColumn(column) {
		return primary.Column(column), true
	}
	return nil, false
}

func sourceName(rule models.MappingRule, src Sources) string {
	if rule.SourceFile != "" {
		return string(rule.SourceFile)
	}
	return string(src.PrimaryFile)
}

func constantSeries(value string, n int) []string {
	s := make([]string, n)
	for i := range s {
		s[i] = value
	}
	return s
}

// outputColumns orders template fields first, then mapped fields not in the template
func outputColumns(rules []models.MappingRule, template []models.TemplateField) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, f := range template {
		if !seen[f.TargetField] {
			seen[f.TargetField] = true
			cols = append(cols, f.TargetField)
		}
	}
	for _, r := range rules {
		if !seen[r.TargetField] {
			seen[r.TargetField] = true
			cols = append(cols, r.TargetField)
		}
	}
	return cols
}
